// Package cleanup は不要データの定期削除ジョブを提供する。
// 期限切れのセッションと、親プロジェクトが削除されてから
// 保持期間（デフォルト30日）を超過した孤立タスクを削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// 削除対象の種別。ログとメトリクスのラベルに使用する。
const (
	KindExpiredSessions = "expired_sessions"
	KindOrphanTasks     = "orphan_tasks"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Recorder は削除件数の記録先。metrics.Collectorが実装する。
type Recorder interface {
	RecordCleanup(kind string, deleted int64)
}

// CleanupJob は不要データの定期削除ジョブ。
// 削除条件は冪等であり、対象がない場合もエラーにならない。
type CleanupJob struct {
	db            Executor
	logger        *slog.Logger
	recorder      Recorder
	RetentionDays int // 孤立タスクの保持日数（デフォルト: 30）
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:            db,
		logger:        logger,
		RetentionDays: 30,
	}
}

// SetRecorder は削除件数の記録先を設定する。
func (j *CleanupJob) SetRecorder(recorder Recorder) {
	j.recorder = recorder
}

// Run は期限切れセッションと孤立タスクを順に削除する。
// 孤立タスクは、どのプロジェクトにも属さず、かつ更新日時が保持期間より古いもの。
func (j *CleanupJob) Run(ctx context.Context) error {
	if err := j.exec(ctx, KindExpiredSessions,
		`DELETE FROM sessions WHERE expires_at < now()`,
	); err != nil {
		return err
	}

	interval := fmt.Sprintf("%d days", j.RetentionDays)
	return j.exec(ctx, KindOrphanTasks,
		`DELETE FROM tasks t
		 WHERE t.updated_at < now() - $1::interval
		   AND NOT EXISTS (SELECT 1 FROM projects p WHERE p.id = t.project_id)`,
		interval,
	)
}

func (j *CleanupJob) exec(ctx context.Context, kind, query string, args ...interface{}) error {
	start := time.Now()

	result, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		j.logger.Error("クリーンアップジョブの実行に失敗しました",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s の削除に失敗: %w", kind, err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordCleanup(kind, deletedCount)
	}

	j.logger.Info("クリーンアップジョブが完了しました",
		slog.String("kind", kind),
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}
