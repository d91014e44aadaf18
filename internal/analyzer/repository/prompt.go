package repository

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/dto"
)

// PriceContext is the live quote used to fact-check news.
type PriceContext struct {
	Price *float64
	High  *float64
	Low   *float64
}

// ReportInput carries every resolved data block for the report prompt.
type ReportInput struct {
	Name      string
	Symbol    string
	Market    string
	Price     *float64
	History   string
	MoneyFlow string
	News      string
}

const chineseDate = "2006年01月02日"

// BuildNewsContext renders search results as numbered blocks.
func BuildNewsContext(results []dto.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		date := r.PublishedDate
		if date == "" {
			date = "Unknown"
		}
		b.WriteString(fmt.Sprintf("News %d: %s\n%s\nDate: %s\n\n", i+1, r.Title, r.Content, date))
	}
	return b.String()
}

// BuildNewsDigestPrompt asks for a strict JSON digest of the last week of news.
func BuildNewsDigestPrompt(newsContext, stockIdentifier string, price *PriceContext, now time.Time) string {
	today := now.Format(chineseDate)
	weekAgo := now.AddDate(0, 0, -7).Format(chineseDate)

	verification := ""
	if price != nil && price.Price != nil {
		verification = fmt.Sprintf(`
行情核实：
今日（%s）通过实时接口获取的行情如下：
- 最新价: %s
- 价格范围: %s - %s (仅供参考)

若新闻中的价格与上述实时数据严重偏离，说明该新闻过时或有误，必须剔除。
`, today, formatOptional(price.Price), formatOptional(price.Low), formatOptional(price.High))
	}

	return fmt.Sprintf(`你是一位有 15 年经验的资深二级市场研究员，擅长辨别信息真伪。
请基于下列原始资讯，为 %s 撰写【最新动态信息】分析。

当前日期: %s
参考资讯:
%s
%s
硬性约束（违反任意一条即判定无效）：
0. 所有输出必须使用简体中文，英文资讯需翻译为流畅的中文。
1. 只保留 %s 之后（最近 7 天）发生的事件，剔除财报旧闻、IPO 等陈旧信息；若全部过时，返回无效。
2. 不得出现"股价下滑"、"成交活跃"、"资金流向"、涨跌幅等纯量价描述，关注业务本身。
3. 引用研报观点必须写明机构名称；不得使用"有消息称"、"传闻"等模糊表述。
4. 每条概述必须明确提及该股票，使用完整句子，不能以"..."结尾，不得包含"加载中"、"待披露"等不确定信息。

关注重点：核心业务变动（产能、订单、新产品、并购）、机构逻辑、行业政策与竞对、负面事件（制裁、监管、诉讼）。

仅返回如下 JSON，不要使用 markdown：
{
  "is_valid": true,
  "overview_items": [
    {"content": "具体事件描述（含细节）", "sentiment": "正面/负面/中性"}
  ],
  "sentiment_summary": "2-3 句综合总结",
  "sentiment_score": 0-100,
  "overall_sentiment": "正面/负面/中性"
}

若没有任何最近 7 天的有价值信息，返回: {"is_valid": false}
`, stockIdentifier, today, newsContext, verification, weekAgo)
}

// BuildReportPrompt asks for the structured analysis report.
func BuildReportPrompt(in ReportInput) string {
	return fmt.Sprintf(`请分析以下股票: %s (%s, %s市场)。

数据:
当前价格: %s

最近5日历史数据:
%s

资金流向数据:
%s

最近相关新闻:
%s

请根据以上数据提供一份专业的简体中文分析报告，必须包含：
1. 资金流向分析（区分主力资金与散户资金，结合成交量变化）
2. 技术指标分析（趋势、支撑位、阻力位）
3. 明确的买入与卖出参考点位

只返回原始 JSON 字符串，不要使用 markdown 代码块：
{
  "recommendation": "BUY" | "SELL" | "HOLD",
  "risk_level": "High" | "Medium" | "Low",
  "summary": "一句话核心观点",
  "technical_analysis": "技术指标分析",
  "money_flow": "资金流向分析",
  "key_points": ["关键点 1", "关键点 2", "关键点 3"],
  "trade_suggestions": {
    "buy_point": "建议买入区间",
    "sell_point": "建议卖出区间",
    "stop_loss": "建议止损位"
  },
  "investment_outlook": {
    "short_term": {"period": "短期 (1-5日)", "trend": "", "drivers": "", "risk_level": "", "advice": ""},
    "mid_term": {"period": "中长期 (1-3月)", "trend": "", "drivers": "", "risk_level": "", "advice": ""}
  }
}

重点关注历史走势中的技术形态、资金流向中的主力动向以及新闻中的市场情绪。
`, in.Name, in.Symbol, in.Market, formatOptional(in.Price), in.History, in.MoneyFlow, in.News)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}
