package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/mergeball/pkg/app"
	"github.com/gonewx/mergeball/pkg/config"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	balancePath := flag.String("balance", "", "平衡配置文件路径（YAML），为空使用默认值")
	layoutPath := flag.String("layout", "", "布局配置文件路径（YAML），为空使用默认值")
	flag.Parse()

	game, err := app.NewApp(app.Config{
		Verbose:     *verbose,
		BalancePath: *balancePath,
		LayoutPath:  *layoutPath,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("合成球")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
