package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/utils"
)

func main() {
	envOnly := flag.Bool("env", false, "print only the KEY=value lines")
	size := flag.Int("bytes", utils.MinSecretBytes, "random bytes per secret")
	flag.Parse()

	secrets, err := utils.GenerateEnvSecrets(*size)
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	if *envOnly {
		for _, s := range secrets {
			fmt.Println(s.Line())
		}
		return
	}

	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for Tour Kenya")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	for _, s := range secrets {
		fmt.Println(s.Line())
	}
	fmt.Println()
	fmt.Println("Keep these secrets safe and never commit them to version control.")
	fmt.Println("===========================================")
}
