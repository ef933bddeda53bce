// Command hash-password prints the bcrypt hash the server would store for a
// password. Use it to seed accounts directly in the database.
//
//	echo -n 'secret' | hash-password -cost 12
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/useradmin/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", 10, "bcrypt cost factor")
	flag.Parse()

	hash, err := hashPassword(os.Stdin, *cost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

// hashPassword reads the first line of r and encodes it.
func hashPassword(r io.Reader, cost int) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return auth.NewBcryptEncoder(cost).Encode(password)
}
