// Package archive 把已完成的梦境记录归档到对象存储。
package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"dreamtrace-go/internal/config"
	"dreamtrace-go/internal/repository"
	"dreamtrace-go/pkg/log"
	"dreamtrace-go/pkg/storage"
	"dreamtrace-go/pkg/tasks"
)

// Archiver 消费归档任务：加载记录、序列化为 JSON 并写入 MinIO。
// 对象按 dreams/<userID>/<recordID>.json 组织，重复归档会覆盖同名对象，
// 因此任务天然可重试。
type Archiver struct {
	dreamRepo repository.DreamRepository
	cfg       config.MinIOConfig
}

// NewArchiver 创建一个新的 Archiver 实例。
func NewArchiver(dreamRepo repository.DreamRepository, cfg config.MinIOConfig) *Archiver {
	return &Archiver{dreamRepo: dreamRepo, cfg: cfg}
}

// Process 实现 kafka.TaskProcessor 接口。
func (a *Archiver) Process(ctx context.Context, task tasks.RecordArchiveTask) error {
	record, err := a.dreamRepo.FindByID(task.RecordID)
	if err != nil {
		return fmt.Errorf("加载待归档记录失败: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化归档记录失败: %w", err)
	}

	objectName := fmt.Sprintf("dreams/%d/%s.json", record.UserID, record.ID)
	if err := storage.PutJSONObject(ctx, a.cfg.BucketName, objectName, data); err != nil {
		return fmt.Errorf("写入归档对象失败: %w", err)
	}

	log.Infof("记录归档完成: recordID=%s, object=%s", record.ID, objectName)
	return nil
}
