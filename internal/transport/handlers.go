package transport

import (
	"encoding/xml"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	errx "github.com/bytecode-faq-assistant/server/internal/core/error"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Message twimlMessage `xml:"Message"`
}

type twimlMessage struct {
	Body string `xml:"Body"`
}

// webhook accepts the form fields posted by the messaging provider and
// answers with a TwiML message.
func (s *Server) webhook(c *fiber.Ctx) error {
	in := model.Inbound{
		SenderID: strings.TrimSpace(c.FormValue("From")),
		Body:     c.FormValue("Body"),
	}
	if err := validate.Struct(in); err != nil {
		return errx.New(err, fiber.StatusBadRequest, "From is required")
	}

	reply := s.handler.Handle(c.UserContext(), in)

	out, err := xml.Marshal(twimlResponse{Message: twimlMessage{Body: reply.Text}})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextXMLCharsetUTF8)
	return c.Send(append([]byte(xml.Header), out...))
}

// chat is the JSON equivalent of webhook for web and test clients.
func (s *Server) chat(c *fiber.Ctx) error {
	var in model.Inbound
	if err := c.BodyParser(&in); err != nil {
		return errx.New(err, fiber.StatusBadRequest, "invalid request body")
	}
	in.SenderID = strings.TrimSpace(in.SenderID)
	if err := validate.Struct(in); err != nil {
		return errx.New(err, fiber.StatusBadRequest, "sender_id is required")
	}

	return c.JSON(s.handler.Handle(c.UserContext(), in))
}
