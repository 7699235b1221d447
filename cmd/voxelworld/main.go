package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxelcore/internal/config"
	"github.com/annel0/voxelcore/internal/eventbus"
	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/observability"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world"
)

const busCapacity = 4096

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults to $VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}

	err = run(context.Background(), cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer, waitForSignal)
	if err != nil {
		logging.Error("❌ %v", err)
	}

	if cerr := logging.GetLoggerManager().CloseAll(); cerr != nil {
		log.Printf("Ошибка закрытия логов: %v", cerr)
	}
	logging.CloseDefaultLogger()

	if err != nil {
		os.Exit(1)
	}
}

// setupLogging применяет секцию log конфигурации и создаёт глобальный логгер
func setupLogging(lc config.LogConfig) error {
	if lc.Dir != "" {
		logging.SetLogDir(lc.Dir)
	}
	if lc.Level != "" {
		level, err := logging.ParseLevel(lc.Level)
		if err != nil {
			return err
		}
		logging.SetDefaultLevel(level)
		logging.GetLoggerManager().SetConsoleLevelAll(level)
	}
	return logging.InitDefaultLogger("voxelworld")
}

// run загружает область мира и, если задан адрес метрик, ждёт wait.
// Ошибка генерации возвращается после освобождения ресурсов.
func run(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, g prometheus.Gatherer, wait func()) error {
	// === ТРАССИРОВКА ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.GetServiceName())
		if err != nil {
			logging.Error("Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	gen, err := buildGenerator(cfg.World)
	if err != nil {
		return err
	}

	procMetrics, err := observability.NewProcessMetrics()
	if err != nil {
		logging.Warn("Метрики процесса недоступны: %v", err)
	}

	// === ШИНА СОБЫТИЙ ===
	bus := eventbus.NewMemoryBus(busCapacity)
	if _, err := eventbus.StartLoggingListener(bus, nil); err != nil {
		logging.Error("Ошибка подписки LoggingListener: %v", err)
	}
	busMetrics := eventbus.NewMetricsExporter(bus, reg)
	busMetrics.Start(time.Second)
	defer func() {
		// дожидаемся доставки событий рендера до финальной синхронизации метрик
		bus.Close()
		busMetrics.Stop()
	}()

	// === МИР ===
	wm := world.NewWorldManager(gen)
	wm.SetRenderer(eventbus.NewRenderPublisher(bus))
	wm.SetMetrics(world.NewMetrics(reg))

	metricsAddr := cfg.Metrics.GetAddr()
	if metricsAddr != "" {
		srv := eventbus.ServeMetrics(metricsAddr, g, logging.GetMetricsLogger())
		defer srv.Close()
	}

	origin := vec.Vec2{X: cfg.World.OriginX, Z: cfg.World.OriginZ}
	xWidth, zWidth := cfg.World.GetChunksX(), cfg.World.GetChunksZ()
	logging.Info("🌍 Загрузка области %dx%d чанков от %v (генератор %s)",
		xWidth, zWidth, origin, cfg.World.GetGenerator())

	started := time.Now()
	if err := wm.LoadArea(ctx, origin, xWidth, zWidth); err != nil {
		return fmt.Errorf("load area: %w", err)
	}

	stats := wm.Stats()
	logging.Info("✅ Мир загружен за %s: чанков %d, вокселей %d, видимых %d, скрытых %d",
		time.Since(started).Round(time.Millisecond), stats.Chunks, stats.Voxels, stats.Exposed, stats.Enclosed)
	if procMetrics != nil {
		logging.Info("📊 Процесс: %s", procMetrics.Snapshot())
	}

	if metricsAddr != "" && wait != nil {
		wait()
	}

	logging.Info("👋 Работа завершена")
	return nil
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	logging.Debug("Ожидание сигналов завершения...")
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
}

func buildGenerator(w config.WorldConfig) (world.Generator, error) {
	if w.GetGenerator() == "noise" {
		return world.NewNoiseGenerator(w.Seed), nil
	}
	fill, err := w.FillBlock()
	if err != nil {
		return nil, err
	}
	return world.NewFlatGenerator(w.GetThickness(), fill), nil
}
