package common

const (
	RedisStreamAnalysisTrigger = "stock.analysis.trigger"

	RedisStreamGroup    = "analysis-group"
	RedisStreamConsumer = "analysis-consumer"

	RedisKeyPrefixCache = "stock-watchlist:cache:"

	HeaderUserEmail = "X-User-Email"
)
