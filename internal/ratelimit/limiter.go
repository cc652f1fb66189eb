// ratelimit — фиксированные окна подсчёта запросов по парам
// (клиент, класс политики).
//
// Счётчики живут в памяти процесса: при нескольких инстансах лимиты
// действуют на каждый инстанс отдельно — осознанное ограничение,
// а не ошибка. Классы политик независимы: один запрос может
// тарифицироваться сразу в нескольких (general + post-creation).
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blog-service/internal/config"
)

// Имена классов политик.
const (
	PolicyGeneral         = "general"
	PolicyAuth            = "auth"
	PolicyPostCreation    = "post-creation"
	PolicyCommentCreation = "comment-creation"
)

// Policy — именованная конфигурация лимита: окно и потолок запросов.
type Policy struct {
	Name    string
	Window  time.Duration
	Max     int64
	Message string
}

// Result — исход проверки плюс данные для RateLimit-заголовков.
// Заголовки отдаются на каждый проверенный запрос, разрешён он или нет,
// чтобы клиент мог троттлиться сам.
type Result struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
	Message    string
}

type bucketKey struct {
	client string
	policy string
}

// bucket — счётчик одного окна. Мутация только под мьютексом лимитера.
type bucket struct {
	windowStart time.Time
	count       int64
}

// Limiter — in-memory лимитер с фиксированными окнами.
type Limiter struct {
	mu       sync.Mutex
	policies map[string]Policy
	buckets  map[bucketKey]*bucket
	now      func() time.Time
}

// New создаёт лимитер с заданным набором политик.
func New(policies ...Policy) *Limiter {
	m := make(map[string]Policy, len(policies))
	for _, p := range policies {
		m[p.Name] = p
	}

	return &Limiter{
		policies: m,
		buckets:  make(map[bucketKey]*bucket),
		now:      time.Now,
	}
}

// FromConfig собирает стандартный набор политик из конфигурации.
func FromConfig(cfg config.LimitsConfig) []Policy {
	return []Policy{
		{
			Name:    PolicyGeneral,
			Window:  cfg.General.Window,
			Max:     cfg.General.Max,
			Message: "Too many requests from this IP, please try again later.",
		},
		{
			Name:    PolicyAuth,
			Window:  cfg.Auth.Window,
			Max:     cfg.Auth.Max,
			Message: "Too many authentication attempts from this IP, please try again later.",
		},
		{
			Name:    PolicyPostCreation,
			Window:  cfg.PostCreation.Window,
			Max:     cfg.PostCreation.Max,
			Message: "Too many posts created from this IP, please try again later.",
		},
		{
			Name:    PolicyCommentCreation,
			Window:  cfg.CommentCreation.Window,
			Max:     cfg.CommentCreation.Max,
			Message: "Too many comments from this IP, please try again later.",
		},
	}
}

// Check тарифицирует один запрос клиента в классе policy.
// Инкремент и сравнение выполняются атомарно под мьютексом: два
// конкурентных запроса одного клиента не могут оба увидеть
// до-инкрементное значение и оба пройти, когда место осталось одно.
func (l *Limiter) Check(clientKey, policy string) (Result, error) {
	const op = "ratelimit.Check"

	p, ok := l.policies[policy]
	if !ok {
		return Result{}, fmt.Errorf("%s: unknown policy %q", op, policy)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := bucketKey{client: clientKey, policy: policy}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}

	// Окно истекло — начинаем новое.
	if now.Sub(b.windowStart) >= p.Window {
		b.windowStart = now
		b.count = 0
	}

	b.count++

	resetAt := b.windowStart.Add(p.Window)

	remaining := p.Max - b.count
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:   b.count <= p.Max,
		Limit:     p.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
		Message:   p.Message,
	}

	if !res.Allowed {
		res.RetryAfter = resetAt.Sub(now)
	}

	return res, nil
}

// Sweep периодически выбрасывает корзины, чьё окно закрылось больше
// одного полного окна назад: такие клиенты неактивны, и первая же их
// новая попытка всё равно начала бы окно заново. Останавливается по ctx.
func (l *Limiter) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.sweepOnce()
		}
	}
}

func (l *Limiter) sweepOnce() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		p, ok := l.policies[key.policy]
		if !ok {
			delete(l.buckets, key)
			continue
		}

		if now.Sub(b.windowStart) >= 2*p.Window {
			delete(l.buckets, key)
		}
	}
}

// len возвращает текущее число корзин (для тестов janitor'а).
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.buckets)
}
