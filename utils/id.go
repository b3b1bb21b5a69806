package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// Identifiant unique pour un run de batch (horodatage + aléa)
func GenerateRunID() string {
	return fmt.Sprintf("%d%x", time.Now().UnixNano(), rand.Intn(10000))
}
