// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// RecordArchiveTask represents the data structure for archiving a completed dream record.
type RecordArchiveTask struct {
	RecordID string `json:"record_id"`
	UserID   uint   `json:"user_id"`
}
