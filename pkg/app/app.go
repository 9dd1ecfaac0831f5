// Package app 提供游戏应用的核心包装器
//
// 将初始化与输入处理从 main 包提取出来，实现 ebiten.Game 接口。
// 仿真核心通过 scenes.GameScene 驱动，本包只负责输入转换、
// 视口信号和 HUD。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/entities"
	"github.com/gonewx/mergeball/pkg/game"
	"github.com/gonewx/mergeball/pkg/render"
	"github.com/gonewx/mergeball/pkg/scenes"
)

// Config 应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// BalancePath 平衡配置文件路径，为空则使用默认值
	BalancePath string
	// LayoutPath 布局配置文件路径，为空则使用默认值
	LayoutPath string
}

// App 游戏应用，实现 ebiten.Game 接口
type App struct {
	scene       *scenes.GameScene
	renderScene *render.EbitenScene
	progress    *game.ProgressManager

	lastWidth  int
	lastHeight int
}

// NewApp 创建并初始化游戏应用
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	balance := config.DefaultBalanceConfig()
	if cfg.BalancePath != "" {
		loaded, err := config.LoadBalanceConfig(cfg.BalancePath)
		if err != nil {
			return nil, fmt.Errorf("平衡配置加载失败: %w", err)
		}
		balance = loaded
	}

	layout := config.DefaultLayoutConfig()
	if cfg.LayoutPath != "" {
		loaded, err := config.LoadLayoutConfig(cfg.LayoutPath)
		if err != nil {
			return nil, fmt.Errorf("布局配置加载失败: %w", err)
		}
		layout = loaded
	}

	// 本地进度存储，打开失败进入降级模式（仅内存）
	gdataManager, err := gdata.Open(gdata.Config{AppName: "mergeball"})
	if err != nil {
		log.Printf("[App] gdata unavailable: %v (progress will not persist)", err)
		gdataManager = nil
	}
	progress := game.NewProgressManager(gdataManager)

	renderScene := render.NewEbitenScene()
	economy := game.NewContainerEconomy(1000, 400)

	scene, err := scenes.NewGameScene(balance, layout, renderScene, economy, nil,
		float64(config.GameWindowWidth), float64(config.GameWindowHeight))
	if err != nil {
		return nil, fmt.Errorf("场景创建失败: %w", err)
	}

	log.Printf("[App] Initialized, best level so far: %d", progress.BestLevel())
	return &App{
		scene:       scene,
		renderScene: renderScene,
		progress:    progress,
		lastWidth:   config.GameWindowWidth,
		lastHeight:  config.GameWindowHeight,
	}, nil
}

// Update 每 tick 调用一次：转换输入、检测视口变化、推进仿真
func (a *App) Update() error {
	// 指针跟随
	cx, _ := ebiten.CursorPosition()
	a.scene.SetPointer(float64(cx))

	// 投掷意图：鼠标左键或空格
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.scene.QueueThrow()
	}

	// 能力激活
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		a.scene.QueueAbility(entities.SpecialBull)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.scene.QueueAbility(entities.SpecialBomb)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.scene.Ability().RechargeBull()
	}

	// 暂停开关
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if a.scene.State().Paused {
			a.scene.Resume()
		} else {
			a.scene.Pause()
		}
	}

	// 视口信号：窗口尺寸变化时排队一次 resize
	w, h := ebiten.WindowSize()
	if w > 0 && h > 0 && (w != a.lastWidth || h != a.lastHeight) {
		a.lastWidth, a.lastHeight = w, h
		a.scene.QueueResize(float64(w), float64(h))
	}

	a.scene.Update(1.0 / 60.0)

	// 进度同步（只在刷新纪录时落盘）
	state := a.scene.State()
	a.progress.RecordBestLevel(state.BestLevel)
	a.progress.RecordBestScore(state.Score)

	return nil
}

// Draw 绘制场景和 HUD
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x26, G: 0x2B, B: 0x33, A: 0xFF})
	a.renderScene.Draw(screen)

	state := a.scene.State()
	hud := fmt.Sprintf("score %d  best L%d  balls %d/%d  resource %.0f/%.0f",
		state.Score, state.BestLevel,
		a.scene.Registry().Count(), a.scene.Balance().MaxBalls,
		a.scene.Economy().Balance(), a.scene.Economy().Capacity())
	if state.Paused {
		hud += "  [PAUSED]"
	}
	ebitenutil.DebugPrint(screen, hud)
}

// Layout 逻辑屏幕尺寸跟随窗口，视口变化由 Update 检测并排队
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
