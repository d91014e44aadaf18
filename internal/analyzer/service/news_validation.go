package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrValidationRejected marks a digest item that failed a local quality gate.
var ErrValidationRejected = errors.New("news item rejected")

const (
	minItemRunes     = 20
	maxLatinRatio    = 0.5
	maxPriceKeywords = 3
)

var pendingKeywords = []string{
	"加载中", "待披露", "暂无数据", "数据加载", "正在加载", "敬请期待", "暂无", "待定",
}

var priceKeywords = []string{
	"股价", "收盘", "开盘", "涨幅", "跌幅", "成交量", "成交额", "最高价", "最低价", "涨停", "跌停", "市值",
}

// ValidateNewsItem applies the local quality gates to one overview item.
func ValidateNewsItem(content string) error {
	text := strings.TrimSpace(content)

	if strings.HasSuffix(text, "...") || strings.HasSuffix(text, "…") {
		return fmt.Errorf("%w: incomplete sentence", ErrValidationRejected)
	}
	for _, kw := range pendingKeywords {
		if strings.Contains(text, kw) {
			return fmt.Errorf("%w: pending information %q", ErrValidationRejected, kw)
		}
	}

	hits := 0
	for _, kw := range priceKeywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	if hits >= maxPriceKeywords {
		return fmt.Errorf("%w: price narration", ErrValidationRejected)
	}

	total := utf8.RuneCountInString(text)
	if total < minItemRunes {
		return fmt.Errorf("%w: too short", ErrValidationRejected)
	}

	latin := 0
	for _, r := range text {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			latin++
		}
	}
	if float64(latin)/float64(total) > maxLatinRatio {
		return fmt.Errorf("%w: not chinese", ErrValidationRejected)
	}
	return nil
}
