package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	var (
		url         = flag.String("url", "http://127.0.0.1:8080/api/search?q=news", "target URL")
		concurrency = flag.Int("concurrency", 8, "number of workers")
		duration    = flag.Duration("duration", 10*time.Second, "test duration")
		qps         = flag.Int("qps", 200, "total QPS (approx)")
		forwarded   = flag.String("forwarded_for", "", "X-Forwarded-For value, to pose as one client")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}
	limiter := rate.NewLimiter(rate.Limit(max(1, *qps)), 1)

	var (
		total       int64
		okCount     int64
		limited     int64
		errorCount  int64
		durationsMu sync.Mutex
		durations   []time.Duration
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < *concurrency; i++ {
		g.Go(func() error {
			for {
				if err := limiter.Wait(gctx); err != nil {
					return nil
				}
				req, err := http.NewRequestWithContext(gctx, http.MethodGet, *url, nil)
				if err != nil {
					return err
				}
				if *forwarded != "" {
					req.Header.Set("X-Forwarded-For", *forwarded)
				}

				start := time.Now()
				resp, err := client.Do(req)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					atomic.AddInt64(&errorCount, 1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				switch {
				case resp.StatusCode == http.StatusTooManyRequests:
					atomic.AddInt64(&limited, 1)
				case resp.StatusCode < 500:
					atomic.AddInt64(&okCount, 1)
				default:
					atomic.AddInt64(&errorCount, 1)
				}
				elapsed := time.Since(start)
				durationsMu.Lock()
				durations = append(durations, elapsed)
				durationsMu.Unlock()
			}
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Println("bench aborted:", err)
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	printStats(total, okCount, limited, errorCount, durations)
}

func printStats(total, okCount, limited, errorCount int64, samples []time.Duration) {
	if len(samples) == 0 {
		fmt.Println("no samples collected")
		return
	}
	fmt.Printf("total=%d ok=%d limited=%d errors=%d\n", total, okCount, limited, errorCount)
	fmt.Printf("min=%s p50=%s p95=%s p99=%s max=%s avg=%s\n",
		samples[0],
		percentile(samples, 0.50),
		percentile(samples, 0.95),
		percentile(samples, 0.99),
		samples[len(samples)-1],
		average(samples),
	)
}

func percentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	idx := int(math.Ceil(float64(len(samples))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return samples[idx]
}

func average(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range samples {
		total += s
	}
	return total / time.Duration(len(samples))
}
