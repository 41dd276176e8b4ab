package service

import (
	"math"
)

// CohortStats son la media y desvio por dimension de una cohorte.
type CohortStats struct {
	Mean []float64
	Std  []float64
}

// MeanStd calcula media y desvio muestral por dimension en una sola pasada (Welford).
// Si dim <= 0 se alinea al largo minimo observado. Un vector mas corto solo aporta a sus primeras dimensiones.
// Nunca devuelve std 0: con menos de 2 muestras en una dimension, o varianza nula, usa 1.
func MeanStd(vectors [][]float64, dim int) CohortStats {
	if len(vectors) == 0 {
		return CohortStats{Mean: []float64{}, Std: []float64{}}
	}
	if dim <= 0 {
		dim = minLen(vectors)
	}

	mean := make([]float64, dim)
	m2 := make([]float64, dim)
	count := make([]int, dim)

	for _, v := range vectors {
		n := min(dim, len(v))
		for i := 0; i < n; i++ {
			x := finiteOrZero(v[i])
			count[i]++
			delta := x - mean[i]
			mean[i] += delta / float64(count[i])
			m2[i] += delta * (x - mean[i])
		}
	}

	std := make([]float64, dim)
	for i := range std {
		if count[i] < 2 {
			std[i] = 1
			continue
		}
		s := math.Sqrt(m2[i] / float64(count[i]-1))
		if s == 0 || math.IsNaN(s) {
			s = 1
		}
		std[i] = s
	}
	return CohortStats{Mean: mean, Std: std}
}

// ZScore estandariza v contra la cohorte: (v[i]-mean[i])/std[i], truncado al largo menor.
func ZScore(v, mean, std []float64) []float64 {
	n := min(len(v), len(mean), len(std))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := std[i]
		if s == 0 {
			s = 1
		}
		out[i] = (finiteOrZero(v[i]) - mean[i]) / s
	}
	return out
}

func minLen(vectors [][]float64) int {
	m := len(vectors[0])
	for _, v := range vectors[1:] {
		if len(v) < m {
			m = len(v)
		}
	}
	return m
}

func finiteOrZero(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
