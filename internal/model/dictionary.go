package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList 是以 JSON 列存储的字符串列表。
type StringList []string

// Value 实现 driver.Valuer。
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner。
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("无法扫描字符串列表: 类型 %T", value)
		}
		b = []byte(str)
	}
	return json.Unmarshal(b, s)
}

// DictionaryEntry 是梦境符号词典中的一个条目。
// 词典在启动时加载，运行期只读；符号匹配从不写入词典。
type DictionaryEntry struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Keyword        string     `gorm:"type:varchar(50);not null;index" json:"keyword"`
	Short          string     `gorm:"type:varchar(100)" json:"short"`
	Interpretation string     `gorm:"type:text;not null" json:"interpretation"`
	Category       string     `gorm:"type:varchar(50)" json:"category"`
	Icon           string     `gorm:"type:varchar(10)" json:"icon"`
	Keywords       StringList `gorm:"type:json" json:"keywords"` // 辅助匹配词，含 Keyword 本身
	Emotions       StringList `gorm:"type:json" json:"emotions"` // 该符号常见的候选情绪
	Questions      StringList `gorm:"type:json" json:"questions"`
	Comforts       StringList `gorm:"type:json" json:"comforts"`
	Steps          StringList `gorm:"type:json" json:"steps"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DictionaryEntry) TableName() string {
	return "dictionary_entries"
}
