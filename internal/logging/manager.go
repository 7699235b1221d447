package logging

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Имена компонентов
const (
	ComponentWorld    = "world"
	ComponentEventBus = "eventbus"
	ComponentMetrics  = "metrics"
)

// LoggerManager раздаёт по одному логгеру на компонент
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	l, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if ok {
		return l, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}

	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("logger %s: %w", component, err)
	}
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger никогда не возвращает nil. Если файл открыть не удалось,
// компонент пишет только в консоль глобального логгера.
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}

	fallback := Default()
	l = &Logger{
		component:       component,
		consoleLogger:   fallback.consoleLogger,
		minConsoleLevel: INFO,
		minFileLevel:    ERROR,
	}
	l.Warn("файл логов недоступен: %v", err)

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if existing, ok := lm.loggers[component]; ok {
		return existing
	}
	lm.loggers[component] = l
	return l
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var firstErr error
	for component, l := range lm.loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "close logger %s", component)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return firstErr
}

// ListComponents возвращает отсортированные имена компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	out := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		out = append(out, component)
	}
	sort.Strings(out)
	return out
}

// SetLogLevel меняет уровни одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.RLock()
	l, ok := lm.loggers[component]
	lm.mu.RUnlock()

	if !ok {
		return fmt.Errorf("logger for component %s not found", component)
	}
	l.SetLevels(consoleLevel, fileLevel)
	return nil
}

// SetConsoleLevelAll задаёт уровень консоли всем уже созданным логгерам
func (lm *LoggerManager) SetConsoleLevelAll(level LogLevel) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	for _, l := range lm.loggers {
		l.mu.Lock()
		l.minConsoleLevel = level
		l.mu.Unlock()
	}
}

func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetWorldLogger() *Logger    { return GetComponentLogger(ComponentWorld) }
func GetEventBusLogger() *Logger { return GetComponentLogger(ComponentEventBus) }
func GetMetricsLogger() *Logger  { return GetComponentLogger(ComponentMetrics) }
