package main

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	envFFmpeg   = "CHORDSCRIBE_FFMPEG"
	envFFprobe  = "CHORDSCRIBE_FFPROBE"
	envLogLevel = "CHORDSCRIBE_LOG_LEVEL"
)

// loadEnv reads a dotenv file, if present, with the process environment
// taking precedence over its values
func loadEnv(path string) map[string]string {
	env, err := godotenv.Read(path)
	if err != nil {
		env = map[string]string{}
	}

	for _, key := range []string{envFFmpeg, envFFprobe, envLogLevel} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}

	return env
}

func applyEnv(opts *options, env map[string]string) {
	if v := env[envFFmpeg]; v != "" {
		opts.ffmpegPath = v
	}
	if v := env[envFFprobe]; v != "" {
		opts.ffprobePath = v
	}
	if v := env[envLogLevel]; v != "" {
		opts.logLevel = v
	}
}
