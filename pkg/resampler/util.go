// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package resampler

import (
	"math"
	"sort"
)

func triangleArea(paX, paY, pbX, pbY, pcX, pcY float64) float64 {
	area := ((paX-pcX)*(pbY-paY) - (paX-pbX)*(pcY-paY)) * 0.5
	return math.Abs(area)
}

// bucketAverage averages the points of a bucket. NaN samples are left
// out of the value average; the time average runs over all points. A
// bucket without a single finite sample falls back to the anchor value
// so the area term degenerates to the value distance.
func bucketAverage(points []Point, anchorV float64) (avgT float64, avgV float64) {
	if len(points) == 0 {
		return 0, anchorV
	}

	finite := 0
	for _, p := range points {
		avgT += p.T
		if p.V.IsNaN() {
			continue
		}
		avgV += float64(p.V)
		finite++
	}

	avgT /= float64(len(points))
	if finite == 0 {
		return avgT, anchorV
	}
	return avgT, avgV / float64(finite)
}

// SliceRange returns the half-open index range [lo, hi) of the samples
// with min <= time[i] <= max. Binary search, no linear scans in the
// render path.
func SliceRange(time []float64, min, max float64) (lo, hi int) {
	lo = sort.Search(len(time), func(i int) bool { return time[i] >= min })
	hi = sort.Search(len(time), func(i int) bool { return time[i] > max })
	return lo, hi
}
