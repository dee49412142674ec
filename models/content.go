package models

import "github.com/uptrace/bun"

// ContentIndex maps a logical content id to the category table holding it.
// The index is maintained outside this service.
type ContentIndex struct {
	bun.BaseModel `bun:"table:content_index,alias:ci"`

	ContentID   int64  `bun:"content_id,pk" json:"contentId"`
	TargetTable string `bun:"target_table,notnull" json:"targetTable"`
	Title       string `bun:"title" json:"title"`
}

// Content is a row of one of the category tables. The table is chosen at query
// time, so the model carries no table tag of its own.
type Content struct {
	ContentID  int64    `bun:"contentid,pk" json:"contentId"`
	Title      string   `bun:"title" json:"title"`
	FirstImage string   `bun:"firstimage" json:"firstimage"`
	Cat3       string   `bun:"cat3" json:"cat3"`
	Address    string   `bun:"address" json:"address"`
	MapX       *float64 `bun:"mapx" json:"mapx"`
	MapY       *float64 `bun:"mapy" json:"mapy"`
	PlanCount  int      `bun:"plan_count" json:"planCount"`
}
