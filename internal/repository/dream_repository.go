// Package repository 提供了数据访问层的实现。
package repository

import (
	"dreamtrace-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DreamRepository 定义了梦境记录的持久化操作接口。
// 存储语义是无锁的读-改-写，后写覆盖先写。
type DreamRepository interface {
	FindByID(id string) (*model.DreamRecord, error)
	FindByUser(userID uint) ([]model.DreamRecord, error)
	Save(record *model.DreamRecord) error
	UpdateFields(id string, updates map[string]interface{}) error
	Delete(id string, userID uint) error
}

type dreamRepository struct {
	db *gorm.DB
}

// NewDreamRepository 创建一个新的 DreamRepository 实例。
func NewDreamRepository(db *gorm.DB) DreamRepository {
	return &dreamRepository{db: db}
}

// FindByID 根据记录 ID 查找一条梦境记录。
func (r *dreamRepository) FindByID(id string) (*model.DreamRecord, error) {
	var record model.DreamRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUser 返回用户的全部记录，按创建时间倒序。
func (r *dreamRepository) FindByUser(userID uint) ([]model.DreamRecord, error) {
	var records []model.DreamRecord
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	return records, err
}

// Save 整条写入记录：存在则覆盖，不存在则新建。
func (r *dreamRepository) Save(record *model.DreamRecord) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
}

// UpdateFields 对指定记录做部分字段合并更新。
func (r *dreamRepository) UpdateFields(id string, updates map[string]interface{}) error {
	return r.db.Model(&model.DreamRecord{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 删除用户自己的一条记录。
func (r *dreamRepository) Delete(id string, userID uint) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.DreamRecord{}).Error
}
