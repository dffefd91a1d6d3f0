package cache_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/nuray/setpoint/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryCache", t, func() {
		Convey("When creating a cache with default options", func() {
			c := cache.NewInMemoryCache()

			Convey("Then it should start empty", func() {
				So(c, ShouldNotBeNil)
				So(c.Len(), ShouldEqual, 0)
			})
		})

		Convey("When storing entries", func() {
			c := cache.NewInMemoryCache()

			Convey("And the key is new", func() {
				c.Put(ctx, "standings\x1fgael monfils", "gael monfils\x1f100")

				Convey("Then it should be retrievable", func() {
					v, ok := c.Get(ctx, "standings\x1fgael monfils")
					So(ok, ShouldBeTrue)
					So(v, ShouldEqual, "gael monfils\x1f100")
					So(c.Len(), ShouldEqual, 1)
				})
			})

			Convey("And the key already exists", func() {
				c.Put(ctx, "k", "first")
				c.Put(ctx, "k", "second")

				Convey("Then the value should be overwritten without growing", func() {
					v, ok := c.Get(ctx, "k")
					So(ok, ShouldBeTrue)
					So(v, ShouldEqual, "second")
					So(c.Len(), ShouldEqual, 1)
				})
			})

			Convey("And the key is absent", func() {
				v, ok := c.Get(ctx, "missing")

				Convey("Then the lookup should miss", func() {
					So(ok, ShouldBeFalse)
					So(v, ShouldEqual, "")
				})
			})
		})

		Convey("When using bounded mode with eviction", func() {
			c := cache.NewInMemoryCache(cache.WithMaxSize(3))

			Convey("And the cache is at capacity", func() {
				keys := []string{"k1", "k2", "k3"}
				for _, k := range keys {
					c.Put(ctx, k, "v")
				}
				So(c.Len(), ShouldEqual, 3)

				c.Put(ctx, "k4", "v")

				Convey("Then the oldest entry should be evicted", func() {
					So(c.Len(), ShouldEqual, 3)

					_, ok := c.Get(ctx, "k1")
					So(ok, ShouldBeFalse)

					for _, k := range []string{"k2", "k3", "k4"} {
						_, ok := c.Get(ctx, k)
						So(ok, ShouldBeTrue)
					}
				})
			})

			Convey("And the capacity is one", func() {
				c1 := cache.NewInMemoryCache(cache.WithMaxSize(1))
				c1.Put(ctx, "k1", "v1")
				c1.Put(ctx, "k2", "v2")

				Convey("Then only the newest entry should remain", func() {
					So(c1.Len(), ShouldEqual, 1)
					_, ok := c1.Get(ctx, "k1")
					So(ok, ShouldBeFalse)
					v, ok := c1.Get(ctx, "k2")
					So(ok, ShouldBeTrue)
					So(v, ShouldEqual, "v2")
				})
			})
		})

		Convey("When using unbounded mode", func() {
			c := cache.NewInMemoryCache(cache.WithMaxSize(0))

			Convey("And many entries are stored", func() {
				const numEntries = 1000
				for i := 0; i < numEntries; i++ {
					c.Put(ctx, fmt.Sprintf("k-%d", i), "v")
				}

				Convey("Then nothing should be evicted", func() {
					So(c.Len(), ShouldEqual, numEntries)

					for i := 0; i < numEntries; i++ {
						_, ok := c.Get(ctx, fmt.Sprintf("k-%d", i))
						So(ok, ShouldBeTrue)
					}
				})
			})
		})

		Convey("When handling edge cases", func() {
			c := cache.NewInMemoryCache()

			Convey("And the key is empty", func() {
				c.Put(ctx, "", "v")

				Convey("Then it should behave like any other key", func() {
					v, ok := c.Get(ctx, "")
					So(ok, ShouldBeTrue)
					So(v, ShouldEqual, "v")
					So(c.Len(), ShouldEqual, 1)
				})
			})

			Convey("And the key is very long", func() {
				long := strings.Repeat("a", 10000)
				c.Put(ctx, long, "v")

				Convey("Then it should be stored", func() {
					_, ok := c.Get(ctx, long)
					So(ok, ShouldBeTrue)
					So(c.Len(), ShouldEqual, 1)
				})
			})
		})
	})
}

func TestCacheConcurrency(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cache with concurrent access", t, func() {
		c := cache.NewInMemoryCache(cache.WithMaxSize(1000))
		const numGoroutines = 10
		const entriesPerGoroutine = 100

		Convey("When multiple goroutines store and read concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for j := 0; j < entriesPerGoroutine; j++ {
						key := fmt.Sprintf("k-%d-%d", id, j)
						c.Put(ctx, key, "v")
						c.Get(ctx, key)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then all entries should be recorded", func() {
				So(c.Len(), ShouldEqual, numGoroutines*entriesPerGoroutine)
			})
		})
	})
}
