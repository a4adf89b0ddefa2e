package repository

// Schema returns the idempotent DDL for all pricing tables. Executed at
// startup through the clickhouse client's InitSchema.
func Schema() []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS fuelpilot`,
		`CREATE TABLE IF NOT EXISTS fuelpilot.price_history (
            product LowCardinality(String),
            day Date,
            price Float64,
            cost Float64,
            competitors Map(String, Float64),
            volume Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (product, day)`,
		`CREATE TABLE IF NOT EXISTS fuelpilot.recommendations (
            product LowCardinality(String),
            day Date,
            recommended_price Float64,
            expected_volume Float64,
            expected_profit Float64,
            guardrail_applied UInt8,
            violation_reason String,
            candidates_tried UInt32,
            candidates String,
            created_at DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(created_at)
        ORDER BY (product, day)`,
		`CREATE TABLE IF NOT EXISTS fuelpilot.competitor_quotes (
            product LowCardinality(String),
            source LowCardinality(String),
            ts DateTime,
            price Float64
        ) ENGINE = MergeTree
        ORDER BY (product, source, ts)
        TTL ts + INTERVAL 90 DAY`,
		`CREATE TABLE IF NOT EXISTS fuelpilot.training_features (
            product LowCardinality(String),
            day Date,
            price Float64,
            cost Float64,
            volume Float64,
            comp_mean Nullable(Float64),
            comp_min Nullable(Float64),
            comp_max Nullable(Float64),
            price_diff Nullable(Float64),
            price_gap_pct Nullable(Float64),
            vol_ma7 Nullable(Float64),
            vol_ma30 Nullable(Float64),
            price_ma7 Nullable(Float64),
            vol_lag1 Nullable(Float64),
            vol_lag7 Nullable(Float64),
            price_lag1 Nullable(Float64),
            dayofweek UInt8,
            is_weekend UInt8,
            month UInt8,
            margin Float64,
            margin_pct Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (product, day)`,
	}
}
