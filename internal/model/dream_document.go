package model

import "time"

// DreamDocument 是写入 Elasticsearch 的梦境记录检索文档。
// 只有已完成的记录会被索引，用于梦境日记的全文搜索。
type DreamDocument struct {
	RecordID   string    `json:"record_id"`
	UserID     uint      `json:"user_id"`
	Transcript string    `json:"transcript"`
	Summary    string    `json:"summary"`
	Symbols    []string  `json:"symbols"`
	Emotion    string    `json:"emotion"`
	CreatedAt  time.Time `json:"created_at"`
}
