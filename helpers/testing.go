package helpers

import (
	"math/rand"
	"time"
)

func RandUnix() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle test cases so hidden order dependencies show up.
func Shuffle[T any](cases []T) {
	RandUnix().Shuffle(len(cases), func(i, j int) { cases[i], cases[j] = cases[j], cases[i] })
}
