// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"flag"
	"fmt"

	"indexfund-api/internal/cli"
	"indexfund-api/internal/config"
	"indexfund-api/internal/handler"
	"indexfund-api/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/indexfund.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	cli.ApplyLogLevel(cfg.Registry.Value.LogLevel)
	cli.LogConfigSummary(cfg)

	ctx := svc.MustNewServiceContext(*cfg)
	defer ctx.Close()
	handler.InstallErrorHandler()
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
