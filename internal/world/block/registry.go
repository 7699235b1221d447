package block

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Type - тип вокселя. Поведения у типа нет, это только метка.
// Нулевое значение Air означает "пусто" и не может быть размещено.
type Type uint8

// Базовые типы вокселей
const (
	Air Type = iota // 0 - пустая клетка
	Grass
	Stone
	Dirt
	Sand
	Water
	Bedrock
)

var (
	registryMu sync.RWMutex
	names      = make(map[Type]string)
	byName     = make(map[string]Type)
)

func init() {
	Register(Air, "air")
	Register(Grass, "grass")
	Register(Stone, "stone")
	Register(Dirt, "dirt")
	Register(Sand, "sand")
	Register(Water, "water")
	Register(Bedrock, "bedrock")
}

// Register добавляет тип в регистр. Имя приводится к нижнему регистру.
// Повторная регистрация того же типа заменяет имя.
func Register(t Type, name string) {
	name = strings.ToLower(strings.TrimSpace(name))

	registryMu.Lock()
	defer registryMu.Unlock()

	if old, ok := names[t]; ok {
		delete(byName, old)
	}
	names[t] = name
	byName[name] = t
}

// Lookup возвращает тип по имени (без учёта регистра)
func Lookup(name string) (Type, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	t, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// IsRegistered проверяет, известен ли тип
func IsRegistered(t Type) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := names[t]
	return ok
}

// Names возвращает отсортированный список зарегистрированных имён
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsAir возвращает true для пустой клетки
func (t Type) IsAir() bool {
	return t == Air
}

func (t Type) String() string {
	registryMu.RLock()
	name, ok := names[t]
	registryMu.RUnlock()

	if !ok {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return name
}
