package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blog-service/internal/config"
)

// newTestLimiter — лимитер с управляемыми часами.
func newTestLimiter(t *testing.T, policies ...Policy) (*Limiter, *time.Time) {
	t.Helper()

	l := New(policies...)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	return l, &now
}

func authPolicy() Policy {
	return Policy{
		Name:    PolicyAuth,
		Window:  15 * time.Minute,
		Max:     5,
		Message: "Too many authentication attempts from this IP, please try again later.",
	}
}

func TestCheck_UnknownPolicy(t *testing.T) {
	l, _ := newTestLimiter(t, authPolicy())

	_, err := l.Check("10.0.0.1", "no-such-policy")
	require.Error(t, err)
}

func TestCheck_SixthRequestRejected(t *testing.T) {
	l, _ := newTestLimiter(t, authPolicy())

	for i := 0; i < 5; i++ {
		res, err := l.Check("10.0.0.1", PolicyAuth)
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d must pass", i+1)
		require.Equal(t, int64(5), res.Limit)
		require.Equal(t, int64(5-(i+1)), res.Remaining)
	}

	res, err := l.Check("10.0.0.1", PolicyAuth)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, int64(0), res.Remaining)
	require.Positive(t, res.RetryAfter)
	require.Contains(t, res.Message, "authentication attempts")
}

func TestCheck_WindowReset(t *testing.T) {
	l, now := newTestLimiter(t, authPolicy())

	for i := 0; i < 6; i++ {
		_, err := l.Check("10.0.0.1", PolicyAuth)
		require.NoError(t, err)
	}

	// Спустя окно счётчик начинается заново.
	*now = now.Add(15 * time.Minute)

	res, err := l.Check("10.0.0.1", PolicyAuth)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, int64(4), res.Remaining)
	require.Equal(t, now.Add(15*time.Minute), res.ResetAt)
}

func TestCheck_ClientsAndPoliciesIndependent(t *testing.T) {
	l, _ := newTestLimiter(t,
		authPolicy(),
		Policy{Name: PolicyGeneral, Window: 15 * time.Minute, Max: 100},
	)

	// Первый клиент выбирает лимит auth целиком.
	for i := 0; i < 6; i++ {
		_, err := l.Check("10.0.0.1", PolicyAuth)
		require.NoError(t, err)
	}

	// Другой клиент и другой класс не задеты.
	res, err := l.Check("10.0.0.2", PolicyAuth)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Check("10.0.0.1", PolicyGeneral)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, int64(99), res.Remaining)
}

func TestCheck_ConcurrentSameBucket(t *testing.T) {
	l := New(Policy{Name: PolicyGeneral, Window: time.Minute, Max: 50})

	const goroutines = 100

	var wg sync.WaitGroup
	allowed := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := l.Check("10.0.0.1", PolicyGeneral)
			require.NoError(t, err)
			allowed <- res.Allowed
		}()
	}

	wg.Wait()
	close(allowed)

	var passed int
	for ok := range allowed {
		if ok {
			passed++
		}
	}

	// Ровно Max запросов прошло, ни одним больше.
	require.Equal(t, 50, passed)
}

func TestSweep_DropsStaleBuckets(t *testing.T) {
	l, now := newTestLimiter(t, authPolicy())

	_, err := l.Check("10.0.0.1", PolicyAuth)
	require.NoError(t, err)
	_, err = l.Check("10.0.0.2", PolicyAuth)
	require.NoError(t, err)
	require.Equal(t, 2, l.size())

	// Один клиент остаётся активным в новом окне.
	*now = now.Add(16 * time.Minute)
	_, err = l.Check("10.0.0.2", PolicyAuth)
	require.NoError(t, err)

	// Спустя два полных окна от старта первый клиент — мусор.
	*now = now.Add(15 * time.Minute)
	l.sweepOnce()

	require.Equal(t, 1, l.size())
}

func TestFromConfig_Defaults(t *testing.T) {
	cfg := config.LimitsConfig{
		General:         config.PolicyConfig{Window: 15 * time.Minute, Max: 100},
		Auth:            config.PolicyConfig{Window: 15 * time.Minute, Max: 5},
		PostCreation:    config.PolicyConfig{Window: time.Hour, Max: 10},
		CommentCreation: config.PolicyConfig{Window: time.Hour, Max: 20},
	}

	policies := FromConfig(cfg)
	require.Len(t, policies, 4)

	byName := map[string]Policy{}
	for _, p := range policies {
		byName[p.Name] = p
	}

	require.Equal(t, int64(100), byName[PolicyGeneral].Max)
	require.Equal(t, int64(5), byName[PolicyAuth].Max)
	require.Equal(t, time.Hour, byName[PolicyPostCreation].Window)
	require.Equal(t, int64(20), byName[PolicyCommentCreation].Max)
}
