// Package model 包含了应用的数据模型定义。
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// 梦境记录的状态。记录创建时为 in_progress，对话给出完成信号后变为 completed。
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ChatMessage 代表记录中的单条对话消息。
type ChatMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageList 是以 JSON 列存储的消息序列，只追加，不修改历史条目。
type MessageList []ChatMessage

// Value 实现 driver.Valuer，将消息序列序列化为 JSON 存储。
func (m MessageList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner，从 JSON 列还原消息序列。
func (m *MessageList) Scan(value interface{}) error {
	if value == nil {
		*m = MessageList{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("无法扫描消息列: 类型 %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, m)
}

// EmotionLabel 是一个情绪标签。旧版记录把情绪存为裸字符串，新版存为
// {name, score} 对象；反序列化时两种形态都接受，内部统一为本结构，
// 序列化时始终写出对象形态。
type EmotionLabel struct {
	Name  string `json:"name"`
	Score int    `json:"score"` // 0-100
}

// UnmarshalJSON 同时接受 "焦虑" 与 {"name":"焦虑","score":80} 两种形态。
func (e *EmotionLabel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		e.Name = name
		e.Score = 0
		return nil
	}
	type alias EmotionLabel
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.New("情绪标签既不是字符串也不是对象")
	}
	*e = EmotionLabel(obj)
	return nil
}

// Extracted 是对一段梦境文本的结构化分析结果。
// 所有字符串集合均已去重，保留插入顺序，但顺序不承载语义。
type Extracted struct {
	Keywords []string       `json:"keywords"`
	Emotions []EmotionLabel `json:"emotions"`
	People   []string       `json:"people"`
	Actions  []string       `json:"actions"`
	Scenes   []string       `json:"scenes"`
	Symbols  []string       `json:"symbols"`
}

// Value 实现 driver.Valuer。
func (e Extracted) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan 实现 sql.Scanner。
func (e *Extracted) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("无法扫描分析结果: 类型 %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, e)
}

// EmotionNames 返回情绪标签的名称列表。
func (e *Extracted) EmotionNames() []string {
	names := make([]string, 0, len(e.Emotions))
	for _, em := range e.Emotions {
		names = append(names, em.Name)
	}
	return names
}

// DreamRecord 代表一次梦境对话会话及其派生的分析结果。
type DreamRecord struct {
	ID        string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    uint        `gorm:"index;not null" json:"userId"`
	RawText   string      `gorm:"type:longtext" json:"rawText"` // 用户：/AI： 交替行的转写文本（兼容旧格式）
	Messages  MessageList `gorm:"type:json" json:"messages"`
	Status    string      `gorm:"type:varchar(20);not null;default:in_progress" json:"status"`
	Extracted *Extracted  `gorm:"type:json" json:"extracted,omitempty"`
	Summary   string      `gorm:"type:text" json:"summary,omitempty"`
	Emotion   string      `gorm:"type:varchar(20)" json:"emotion,omitempty"` // 主情绪标签，情绪判定成功或回退后写入
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DreamRecord) TableName() string {
	return "dream_records"
}

// AppendMessage 追加一条消息并同步维护 RawText 转写。
func (r *DreamRecord) AppendMessage(role, content string) {
	r.Messages = append(r.Messages, ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	prefix := "用户："
	if role == "assistant" {
		prefix = "AI："
	}
	if r.RawText != "" {
		r.RawText += "\n"
	}
	r.RawText += prefix + content
}

// UserText 返回所有用户发言拼接后的文本（情绪判定只基于用户的叙述）。
func (r *DreamRecord) UserText() string {
	var out string
	for _, m := range r.Messages {
		if m.Role != "user" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += m.Content
	}
	return out
}
