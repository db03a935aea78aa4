package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/utils"
)

func main() {
	quiet := flag.Bool("quiet", false, "print only the env lines")
	flag.Parse()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to generate secrets")
	}

	if !*quiet {
		fmt.Fprintln(os.Stderr, "Add these to your .env file. Never commit them.")
	}
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
}
