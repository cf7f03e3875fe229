package rest

import "github.com/gofiber/fiber/v2"

// The two error envelopes are part of the public contract: /api/signup,
// /api/login and /api/users use "error"; /api/token and /api/me use "msg".

type ErrorResponse struct {
	Error string `json:"error"`
}

type MsgResponse struct {
	Msg string `json:"msg"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Error: message})
}

func Msg(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, MsgResponse{Msg: message})
}
