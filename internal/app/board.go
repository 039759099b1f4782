package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hitoshi/taskboard/internal/client"
	"github.com/hitoshi/taskboard/internal/view"
)

// boardTimeout はboardサブコマンド全体のタイムアウト。
const boardTimeout = 30 * time.Second

// BoardConfig はboardサブコマンドの接続設定。
type BoardConfig struct {
	APIURL   string
	Email    string
	Password string
}

// loadBoardConfig は環境変数からBoardConfigを読み込む。
// TASKBOARD_API_URL が未設定の場合はローカルのAPIサーバーに接続する。
func loadBoardConfig() (BoardConfig, error) {
	cfg := BoardConfig{
		APIURL:   os.Getenv("TASKBOARD_API_URL"),
		Email:    os.Getenv("TASKBOARD_EMAIL"),
		Password: os.Getenv("TASKBOARD_PASSWORD"),
	}
	if cfg.APIURL == "" {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		cfg.APIURL = "http://localhost:" + port
	}
	if cfg.Email == "" || cfg.Password == "" {
		return BoardConfig{}, fmt.Errorf("TASKBOARD_EMAIL and TASKBOARD_PASSWORD are required")
	}
	return cfg, nil
}

// runBoard はAPIにログインしてプロジェクトを端末に表示する。
//
//	board            全プロジェクト
//	board mine       自分のプロジェクト
//	board <id>       プロジェクト詳細とタスク
func runBoard(ctx context.Context, out io.Writer, cfg BoardConfig, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, boardTimeout)
	defer cancel()

	c, err := client.NewClient(cfg.APIURL)
	if err != nil {
		return err
	}
	notifier := client.NewSlogNotifier(slog.Default())

	session := client.NewAuthSession(c, notifier)
	if _, err := session.SignIn(ctx, cfg.Email, cfg.Password); err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}
	defer func() {
		if err := session.SignOut(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("sign out failed", slog.String("error", err.Error()))
		}
	}()

	path := view.PathBoard
	if len(args) > 0 {
		if args[0] == "mine" {
			path = view.PathDashboard
		} else {
			path = view.ProjectPath(args[0])
		}
	}

	projects := client.NewProjectStore(c, notifier)
	user := session.User()

	route := view.Resolve(path, session.Authenticated())
	switch route.Screen {
	case view.ScreenDetail:
		project, err := projects.FetchByID(ctx, route.ProjectID)
		if err != nil {
			return err
		}
		tasks, err := client.NewTaskStore(c, route.ProjectID, notifier).Load(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, view.RenderDetail(view.BuildDetail(project, tasks, user)))
	case view.ScreenDashboard:
		owned, err := projects.Load(ctx, "me")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, view.RenderDashboard(view.BuildDashboard(owned, user)))
	default:
		all, err := projects.Load(ctx, "")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, view.RenderBoard(view.BuildBoard(all, user)))
	}
	return nil
}
