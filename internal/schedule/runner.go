package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Run 运行一个长期任务, 记录起止日志, panic 会转成 error 返回
func Run(ctx context.Context, task Task) (err error) {
	start := time.Now()
	slog.Info("task started", "task", task.Name())
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panic: %v", task.Name(), r)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("task exited", "task", task.Name(), "elapsed", time.Since(start), "error", err)
			return
		}
		slog.Info("task finished", "task", task.Name(), "elapsed", time.Since(start))
	}()
	return task.Run(ctx)
}
