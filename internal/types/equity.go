// Package types provides type definitions for structured data used throughout the pts-radar system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/shopspring/decimal"

// EquityRow is one row of the night-session price increase ranking.
// Optional fields are nil when the cell text yields no value.
type EquityRow struct {
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	ChangePct    *decimal.Decimal `json:"change_pct"`
	ChangePctRaw string           `json:"change_pct_raw,omitempty"`
	Volume       *int64           `json:"volume"`
	ClosePrice   *int64           `json:"close_price"`
	PTSPrice     *int64           `json:"pts_price"`
	// Page is the ranking page the row was parsed from
	Page int `json:"page,omitempty"`
}

// RunParams holds the validated request for one acquisition run.
type RunParams struct {
	PctThreshold decimal.Decimal `json:"pct_threshold"`
	VolumeFloor  int64           `json:"volume_floor" validate:"gte=0"`
	MaxPages     int             `json:"max_pages" validate:"gte=1,lte=200"`
	// FullScan disables the percentage early stop. Empty pages and MaxPages still end the crawl.
	FullScan bool `json:"full_scan"`
}
