package di

import "testing"

type counter struct{ n int }

func TestContainer_FactoryIsLazySingleton(t *testing.T) {
	c := NewContainer()
	token := NewToken[*counter]("test.counter")

	builds := 0
	RegisterToken(c, token, func(ServiceRegistry) *counter {
		builds++
		return &counter{}
	})

	if builds != 0 {
		t.Fatalf("factory ran before first Get")
	}

	first := GetToken(c, token)
	second := GetToken(c, token)
	if first != second {
		t.Error("expected the same instance on every Get")
	}
	if builds != 1 {
		t.Errorf("factory ran %d times, want 1", builds)
	}
}

func TestContainer_FactoryResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("config", 42)

	token := NewToken[int]("test.derived")
	RegisterToken(c, token, func(sr ServiceRegistry) int {
		return sr.Get("config").(int) * 2
	})

	if got := GetToken(c, token); got != 84 {
		t.Errorf("GetToken() = %d, want 84", got)
	}
}

func TestContainer_UnknownServicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered service")
		}
	}()
	NewContainer().Get("missing")
}
