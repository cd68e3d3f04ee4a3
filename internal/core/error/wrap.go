package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, RedisNotFoundMessage)
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}

// WrapSink wraps a failed append to a leads or unanswered-questions sink.
func WrapSink(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInsufficientStorage, SinkErrorMessage)
}

// WrapGeneration wraps a failed generative model call.
func WrapGeneration(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, GenerationErrorMessage)
}
