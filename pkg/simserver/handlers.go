package simserver

import (
	"errors"
	"net/url"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-linetimer/pkg/protocol"
)

// handleListServices returns the advertised services
func (s *Server) handleListServices(c *fiber.Ctx) error {
	return c.JSON(protocol.ServicesValues{Services: s.Services()})
}

// handleCallService calls a service; the body is the service args
func (s *Server) handleCallService(c *fiber.Ctx) error {
	service := "/" + c.Params("*")

	values, err := s.Call(service, c.Body())
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, errNoService) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(protocol.ErrorBody{Error: err.Error()})
	}
	return c.JSON(values)
}

// handleGetParam returns a numeric parameter
func (s *Server) handleGetParam(c *fiber.Ctx) error {
	// Params does not unescape, and clients escape each segment
	raw, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(protocol.ErrorBody{Error: err.Error()})
	}
	name := "/" + raw

	v, ok := s.world.Param(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(protocol.ErrorBody{
			Error: "parameter " + name + " is not set",
		})
	}
	return c.JSON(protocol.ParamValue{Name: name, Value: v})
}

// handleTime returns the simulated clock
func (s *Server) handleTime(c *fiber.Ctx) error {
	return c.JSON(protocol.GetTimeValues{Time: protocol.NewTime(s.world.SimTime())})
}

// handleState returns the raw world state for debugging
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.world.Snapshot())
}

// handleRosbridge serves one rosbridge client. Requests are answered in
// order on the connection's goroutine, so writes never race.
func (s *Server) handleRosbridge(c *websocket.Conn) {
	s.logger.Debug("rosbridge client connected", "remote", c.RemoteAddr().String())
	defer s.logger.Debug("rosbridge client disconnected", "remote", c.RemoteAddr().String())

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		reply := s.handleFrame(data)
		if reply == nil {
			continue
		}
		out, err := reply.Bytes()
		if err != nil {
			s.logger.Error("failed to encode reply", "error", err)
			continue
		}
		if err := c.WriteMessage(websocket.TextMessage, out); err != nil {
			return
		}
	}
}

// handleFrame turns one inbound frame into its reply.
func (s *Server) handleFrame(data []byte) *protocol.Frame {
	req, err := protocol.ParseFrame(data)
	if err != nil {
		return &protocol.Frame{Op: protocol.OpStatus, Level: "error", Msg: err.Error()}
	}

	if req.Op != protocol.OpCallService {
		return &protocol.Frame{
			Op:    protocol.OpStatus,
			ID:    req.ID,
			Level: "warning",
			Msg:   "unsupported op " + string(req.Op),
		}
	}

	values, err := s.Call(req.Service, req.Args)
	if err != nil {
		return protocol.NewServiceFailure(req.ID, req.Service, err.Error())
	}

	resp, err := protocol.NewServiceResponse(req.ID, req.Service, values)
	if err != nil {
		return protocol.NewServiceFailure(req.ID, req.Service, err.Error())
	}
	return resp
}
