// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Memoized LTTB downsampling. The renderer asks for a (channel,
// viewport, bucket count) view; results are cached process-wide under
// a sample-count budget so redraws of an unchanged viewport cost a
// map lookup.
package downsample

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/SomethingNew71/UltraLog/pkg/lrucache"
	"github.com/SomethingNew71/UltraLog/pkg/resampler"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/SomethingNew71/UltraLog/pkg/units"
)

// DefaultBuckets is the bucket count the renderer requests unless it
// knows better.
const DefaultBuckets = 2000

// DefaultBudget is the total sample count kept across all cache
// entries.
const DefaultBudget = 5_000_000

// ErrInvalidViewport rejects NaN or inverted viewport bounds before
// they can reach a cache key.
var ErrInvalidViewport = errors.New("invalid viewport bounds")

// Viewport is the visible time range.
type Viewport struct {
	Min float64
	Max float64
}

// Key identifies one downsample result. The float bounds enter as bit
// patterns so the key captures identity, not numeric equivalence.
type Key struct {
	LogID     uint64
	ChannelID int
	MinBits   uint64
	MaxBits   uint64
	Buckets   int
}

// NewKey validates the viewport and builds the cache key.
func NewKey(logID uint64, channelID int, vp Viewport, buckets int) (Key, error) {
	if math.IsNaN(vp.Min) || math.IsNaN(vp.Max) || vp.Min >= vp.Max {
		return Key{}, ErrInvalidViewport
	}
	return Key{
		LogID:     logID,
		ChannelID: channelID,
		MinBits:   math.Float64bits(vp.Min),
		MaxBits:   math.Float64bits(vp.Max),
		Buckets:   buckets,
	}, nil
}

// Series is what the renderer consumes: at most Buckets (t, v) points
// in source units.
type Series []resampler.Point

// Cache memoizes downsample results. Concurrent requests for the same
// key share one computation (see pkg/lrucache).
type Cache struct {
	lru *lrucache.Cache[Key, Series]
}

func New(budget int) *Cache {
	return &Cache{lru: lrucache.New[Key, Series](budget)}
}

var (
	initOnce sync.Once
	shared   *Cache
)

// Init sets the shared cache budget. Must run before the first
// GetCache; later calls are no-ops.
func Init(budget int) {
	initOnce.Do(func() {
		if budget <= 0 {
			budget = DefaultBudget
		}
		shared = New(budget)
	})
}

// GetCache returns the process-wide cache instance.
func GetCache() *Cache {
	Init(DefaultBudget)
	return shared
}

// Get returns the downsampled view of a channel restricted to the
// viewport. The result stays in the channel's source unit; display
// conversion happens on the returned copy via ConvertSeries.
func (c *Cache) Get(ctx context.Context, l *schema.Log, channelID int, vp Viewport, buckets int) (Series, error) {
	ch := l.Channel(channelID)
	if ch == nil {
		return nil, fmt.Errorf("no channel %d in log %d", channelID, l.ID)
	}
	if buckets <= 0 {
		buckets = DefaultBuckets
	}

	key, err := NewKey(l.ID, channelID, vp, buckets)
	if err != nil {
		return nil, err
	}

	return c.lru.Get(ctx, key, func() (Series, int, error) {
		series := compute(l, ch, vp, buckets)
		return series, len(series), nil
	})
}

func compute(l *schema.Log, ch *schema.Channel, vp Viewport, buckets int) Series {
	lo, hi := resampler.SliceRange(l.Time, vp.Min, vp.Max)
	if lo >= hi {
		return Series{}
	}

	points := make([]resampler.Point, hi-lo)
	for i := lo; i < hi; i++ {
		points[i-lo] = resampler.Point{T: l.Time[i], V: ch.Samples[i]}
	}

	return resampler.LargestTriangleThreeBuckets(points, buckets)
}

// DropLog eagerly evicts every entry of a closed log; anything missed
// would age out via LRU regardless.
func (c *Cache) DropLog(logID uint64) int {
	return c.lru.DelFunc(func(k Key) bool { return k.LogID == logID })
}

// Stats exposes entry count, used samples and budget for periodic
// logging.
func (c *Cache) Stats() (entries, used, budget int) {
	return c.lru.Stats()
}

// ConvertSeries converts a cached series into the display unit without
// touching the cached copy.
func ConvertSeries(s Series, from, to units.Unit) (Series, error) {
	if from == to || !to.Valid() {
		return s, nil
	}

	out := make(Series, len(s))
	for i, p := range s {
		v, err := units.Convert(float64(p.V), from, to)
		if err != nil {
			return nil, err
		}
		out[i] = resampler.Point{T: p.T, V: schema.Float(v)}
	}
	return out, nil
}
