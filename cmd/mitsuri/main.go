// Command mitsuri runs the bot against a line-based stdin/stdout chat, a
// stand-in for a real chat transport. Each line is one user turn; replies
// are printed to stdout. Internal error detail goes to the log only; the
// user sees a single friendly failure message.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mitsuri-bot/mitsuri"
	"github.com/mitsuri-bot/mitsuri/config"
	"github.com/mitsuri-bot/mitsuri/internal/logging"
)

const fallbackReply = "Ah! Something went wrong... 😵‍💫 Please try again!"

const rateLimitReply = "Kyaa~ slow down a little! 💖 Try again in a minute."

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mitsuri:", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; the environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.LogLevel)

	bot, err := mitsuri.New(cfg, logger)
	if err != nil {
		return err
	}
	defer bot.Close()

	fmt.Println("🌸 Mitsuri is ready! Say something (ctrl-d to quit).")

	const chatID, userID = 1, 1
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		reply, err := bot.Chat(context.Background(), chatID, userID, "friend", text)
		switch {
		case errors.Is(err, mitsuri.ErrRateLimited):
			fmt.Println(rateLimitReply)
		case err != nil:
			fmt.Println(fallbackReply)
		default:
			fmt.Println(reply)
		}
	}
	return scanner.Err()
}
