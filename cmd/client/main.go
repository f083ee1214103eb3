package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toorak_vpn/internal/service/app"
	"toorak_vpn/internal/simulator"
	"toorak_vpn/internal/utils/log"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	host := flag.String("host", "localhost:9090", "router address")
	interval := flag.Duration("interval", 2*time.Second, "packet generation interval")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "simulator seed")
	flag.Parse()

	if err := log.Init("warn", false); err != nil {
		log.Fatal("init logger failed", zap.Error(err))
	}

	a := app.NewApp(*host, "dashboard-"+uuid.NewString(), *interval, simulator.NewGenerator(*seed))

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-done
		a.Stop()
	}()

	if err := a.Run(); err != nil {
		log.Fatal("dashboard failed", zap.Error(err))
	}
	a.Stop()
}
