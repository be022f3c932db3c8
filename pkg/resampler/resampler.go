// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package resampler

import (
	"math"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

// Point is one (time, value) sample of a series.
type Point struct {
	T float64
	V schema.Float
}

// Inspired by one of the algorithms from https://skemman.is/bitstream/1946/15343/3/SS_MSthesis.pdf
//
// LargestTriangleThreeBuckets reduces data to at most `buckets` points.
// The first and last point are always kept verbatim, every emitted
// point is one of the source points. Input with no more points than
// buckets is returned as a copy, NaN samples included. When reducing,
// NaN samples are excluded from bucket averages and never chosen from
// a bucket (only the verbatim first and last point can be NaN); a
// bucket holding only NaN samples
// emits nothing, which leaves a gap the renderer draws as a
// discontinuity. Ties on the triangle area break towards the lowest
// index so the output is stable.
func LargestTriangleThreeBuckets(data []Point, buckets int) []Point {
	if buckets >= len(data) || len(data) <= 2 {
		out := make([]Point, len(data))
		copy(out, data)
		return out
	}
	if buckets < 2 {
		buckets = 2
	}
	if buckets == 2 {
		return []Point{data[0], data[len(data)-1]}
	}

	newData := make([]Point, 0, buckets)

	// Bucket size. Leave room for start and end data points.
	bucketSize := float64(len(data)-2) / float64(buckets-2)

	newData = append(newData, data[0]) // Always add the first point
	prevMaxAreaPoint := 0

	for i := 0; i < buckets-2; i++ {
		// Candidate range of the current bucket.
		currStart := int(math.Floor(float64(i)*bucketSize)) + 1
		currEnd := int(math.Floor(float64(i+1)*bucketSize)) + 1
		if currEnd > len(data)-1 {
			currEnd = len(data) - 1
		}

		// Average of the next bucket; the final iteration averages
		// over the held-out last point.
		nextEnd := int(math.Floor(float64(i+2)*bucketSize)) + 1
		if nextEnd > len(data) {
			nextEnd = len(data)
		}
		a := data[prevMaxAreaPoint]
		avgT, avgV := bucketAverage(data[currEnd:nextEnd], float64(a.V))

		maxArea := -1.0
		maxAreaPoint := -1
		for j := currStart; j < currEnd; j++ {
			if data[j].V.IsNaN() {
				continue
			}
			area := triangleArea(a.T, float64(a.V), data[j].T, float64(data[j].V), avgT, avgV)
			if area > maxArea {
				maxArea = area
				maxAreaPoint = j
			}
		}

		if maxAreaPoint < 0 {
			// Bucket had only NaN samples: gap.
			continue
		}

		newData = append(newData, data[maxAreaPoint])
		prevMaxAreaPoint = maxAreaPoint
	}

	newData = append(newData, data[len(data)-1]) // Always add last

	return newData
}
