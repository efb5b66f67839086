package repository

// Schema returns the idempotent DDL for all tables. ReplacingMergeTree keyed
// by the natural identity gives upsert semantics: re-syncing a day or
// re-running a scan replaces rows instead of duplicating them.
func Schema(database string) []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS ` + database,

		`CREATE TABLE IF NOT EXISTS ` + database + `.daily_bars (
			market          LowCardinality(String),
			coin            LowCardinality(String),
			date            Date,
			open            Float64,
			high            Float64,
			low             Float64,
			close           Float64,
			total_volume    Float64,
			buy_volume      Float64,
			sell_volume     Float64,
			net_volume      Float64,
			buy_volume_usd  Float64,
			sell_volume_usd Float64,
			net_volume_usd  Float64,
			updated_at      DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY (market, coin, date)`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.alerts (
			id           UInt64,
			coin         LowCardinality(String),
			date         Date,
			kind         LowCardinality(String),
			severity     LowCardinality(String),
			description  String,
			value_usd    Float64,
			volume       Float64,
			zscore       Float64,
			rsi          Float64,
			price        Float64,
			metadata     String,
			acknowledged UInt8 DEFAULT 0,
			created_at   DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY (coin, date, kind)`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.futures_snapshots (
			coin                    LowCardinality(String),
			date                    Date,
			spot_price              Float64,
			futures_price           Float64,
			premium_pct             Float64,
			funding_rate            Float64,
			funding_rate_annualized Float64,
			open_interest           Float64,
			updated_at              DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY (coin, date)`,
	}
}
