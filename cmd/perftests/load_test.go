package perftests

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bidding "gigflow/internal/biddingService"
	"gigflow/internal/gigerrors"
	hiring "gigflow/internal/hiringService"
	"gigflow/internal/models"
	"gigflow/internal/repository"
)

// LoadScenario defines configurable benchmark parameters
type LoadScenario struct {
	Name      string
	NumGigs   int
	ReadRatio int // out of 10
	HireRatio int // out of 10, taken from the non-read share
	Burst     bool
}

// OperationMetrics collects latencies safely
type OperationMetrics struct {
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(d time.Duration) {
	om.mu.Lock()
	om.latencies = append(om.latencies, d)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (min, max, avg, p95, p99 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return
	}
	latencies := append([]time.Duration(nil), om.latencies...)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	min = latencies[0]
	max = latencies[len(latencies)-1]

	var total time.Duration
	for _, d := range latencies {
		total += d
	}
	avg = total / time.Duration(len(latencies))
	p95 = latencies[int(0.95*float64(len(latencies)-1))]
	p99 = latencies[int(0.99*float64(len(latencies)-1))]
	return
}

type loadEnv struct {
	repo    *repository.MemoryRepo
	bidding *bidding.BiddingService
	hiring  *hiring.HiringService
	gigIDs  []string
}

// setupRepo creates the repository and services with numGigs open gigs
func setupRepo(numGigs int) loadEnv {
	repo := repository.NewMemoryRepo()
	env := loadEnv{
		repo:    repo,
		bidding: bidding.NewBiddingService(repo),
		hiring:  hiring.NewHiringService(repo, discardPublisher{}),
	}
	for i := 0; i < numGigs; i++ {
		gig := newGig(fmt.Sprintf("Load gig %d", i))
		repo.AddGig(gig)
		env.gigIDs = append(env.gigIDs, gig.ID)
	}
	return env
}

// Benchmark_Load_Marketplace runs mixed bid, read and hire traffic
func Benchmark_Load_Marketplace(b *testing.B) {
	scenarios := []LoadScenario{
		{Name: "Low-Contention-BidHeavy", NumGigs: 200, ReadRatio: 0, HireRatio: 0},
		{Name: "High-Contention-BidHeavy", NumGigs: 5, ReadRatio: 0, HireRatio: 0},
		{Name: "Mixed-Workload", NumGigs: 50, ReadRatio: 5, HireRatio: 1},
		{Name: "ReadHeavy", NumGigs: 50, ReadRatio: 9, HireRatio: 0},
		{Name: "Hire-Storm", NumGigs: 20, ReadRatio: 2, HireRatio: 5, Burst: true},
	}

	for _, s := range scenarios {
		b.Run(s.Name, func(b *testing.B) {
			runParallelScenario(b, s)
		})
	}
}

func runParallelScenario(b *testing.B, s LoadScenario) {
	b.ReportAllocs()

	env := setupRepo(s.NumGigs)

	var totalOps, bidsPlaced, bidsRefused, reads, hires, hiresLost int64
	metrics := &OperationMetrics{}

	start := time.Now()

	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			gigID := env.gigIDs[rnd.Intn(len(env.gigIDs))]
			op := rnd.Intn(10)

			opStart := time.Now()
			switch {
			case op < s.ReadRatio:
				if _, err := env.bidding.GetBidsForGig(ctx, gigID, ownerID); err != nil {
					b.Errorf("read failed: %v", err)
				}
				atomic.AddInt64(&reads, 1)

			case op < s.ReadRatio+s.HireRatio:
				bids, err := env.repo.GetBidsByGig(ctx, gigID)
				if err != nil || len(bids) == 0 {
					break
				}
				bid := bids[rnd.Intn(len(bids))]
				_, err = env.hiring.Hire(ctx, bid.ID, ownerID)
				switch {
				case err == nil:
					atomic.AddInt64(&hires, 1)
				case errors.Is(err, gigerrors.ErrInvalidState):
					atomic.AddInt64(&hiresLost, 1)
				default:
					b.Errorf("hire failed: %v", err)
				}

			default:
				freelancerID := fmt.Sprintf("freelancer_%d", rnd.Int())
				_, err := env.bidding.PlaceBid(ctx, freelancerID, gigID, "load", float64(100+rnd.Intn(50)))
				switch {
				case err == nil:
					atomic.AddInt64(&bidsPlaced, 1)
				case errors.Is(err, gigerrors.ErrInvalidState):
					// the gig was hired meanwhile
					atomic.AddInt64(&bidsRefused, 1)
				default:
					b.Errorf("bid failed: %v", err)
				}
			}

			metrics.Record(time.Since(opStart))
			atomic.AddInt64(&totalOps, 1)

			if !s.Burst {
				time.Sleep(time.Millisecond)
			}
		}
	})

	elapsed := time.Since(start)
	throughput := float64(totalOps) / elapsed.Seconds()
	min, max, avg, p95, p99 := metrics.Stats()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	b.Logf(
		"Scenario: %s | Gigs: %d | Total Ops: %d | Bids: %d | Refused Bids: %d | Reads: %d | Hires: %d | Lost Hires: %d | Elapsed: %s | Throughput: %.2f ops/sec | Latency(us) min: %.2f avg: %.2f max: %.2f p95: %.2f p99: %.2f | Memory Alloc: %.2f MB",
		s.Name, s.NumGigs, totalOps, bidsPlaced, bidsRefused, reads, hires, hiresLost, elapsed,
		throughput,
		float64(min.Microseconds()), float64(avg.Microseconds()), float64(max.Microseconds()),
		float64(p95.Microseconds()), float64(p99.Microseconds()),
		float64(mem.Alloc)/1024/1024,
	)

	verifySingleHire(b, env)
}

// verifySingleHire checks that no gig ended up with more than one hired bid
// and that every assigned gig has exactly one.
func verifySingleHire(b *testing.B, env loadEnv) {
	ctx := context.Background()
	for _, gigID := range env.gigIDs {
		gig, err := env.repo.GetGig(ctx, gigID)
		if err != nil {
			b.Fatalf("load gig %s: %v", gigID, err)
		}
		bids, err := env.repo.GetBidsByGig(ctx, gigID)
		if err != nil {
			b.Fatalf("load bids of %s: %v", gigID, err)
		}

		hired, pending := 0, 0
		for _, bid := range bids {
			switch bid.Status {
			case models.BidHired:
				hired++
			case models.BidPending:
				pending++
			}
		}

		switch gig.Status {
		case models.GigAssigned:
			if hired != 1 || pending != 0 {
				b.Fatalf("gig %s assigned with %d hired and %d pending bids", gigID, hired, pending)
			}
		case models.GigOpen:
			if hired != 0 {
				b.Fatalf("open gig %s has %d hired bids", gigID, hired)
			}
		}
	}
}
