// internal/api/handlers.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"swipe-screening/internal/auth"
	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/common/validation"
	"swipe-screening/internal/models"
	"swipe-screening/internal/screening/gesture"
	"swipe-screening/internal/services/chat"
	"swipe-screening/internal/services/screening"
)

// ==========================
// Auth
// ==========================

func (s *Server) login(c echo.Context) error {
	var in auth.Credentials
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := s.deps.Auth.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) registerCandidate(c echo.Context) error {
	var in auth.CandidateRegistration
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := s.deps.Auth.RegisterCandidate(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

func (s *Server) registerHR(c echo.Context) error {
	var in auth.HRRegistration
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := s.deps.Auth.RegisterHR(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

func (s *Server) logout(c echo.Context) error {
	s.deps.Auth.Logout(c.Request().Context(), principal(c).Session.Token)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, principal(c).Account)
}

// ==========================
// Jobs, applications, profile
// ==========================

func (s *Server) listJobs(c echo.Context) error {
	jobs, err := s.deps.Hiring.ListJobs(c.Request().Context(), principal(c).Account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobs)
}

func (s *Server) apply(c echo.Context) error {
	app, err := s.deps.Hiring.Apply(c.Request().Context(), candidateAccount(c), c.Param("jobId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

func (s *Server) myApplications(c echo.Context) error {
	views, err := s.deps.Hiring.MyApplications(c.Request().Context(), candidateAccount(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) updateProfile(c echo.Context) error {
	var patch models.ProfilePatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	profile, err := s.deps.Hiring.UpdateProfile(c.Request().Context(), candidateAccount(c), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) dashboard(c echo.Context) error {
	d, err := s.deps.Hiring.Dashboard(c.Request().Context(), hrAccount(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// ==========================
// Screening sessions
// ==========================

type decideRequest struct {
	CandidateID string           `json:"candidateId" validate:"required"`
	Decision    gesture.Decision `json:"decision" validate:"required,oneof=accept reject"`
}

func (s *Server) owner(c echo.Context) screening.Owner {
	return screening.OwnerOf(hrAccount(c))
}

func (s *Server) openSession(c echo.Context) error {
	snap, err := s.deps.Screening.Open(c.Request().Context(), s.owner(c), c.Param("jobId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snap)
}

func (s *Server) sessionState(c echo.Context) error {
	snap, err := s.deps.Screening.State(c.Request().Context(), s.owner(c), c.Param("sessionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) sessionInput(c echo.Context) error {
	var ev gesture.Event
	if err := bind(c, &ev); err != nil {
		return err
	}
	out, err := s.deps.Screening.Input(c.Request().Context(), s.owner(c), c.Param("sessionId"), ev)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) sessionDecide(c echo.Context) error {
	var req decideRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if vr := validation.ValidateStruct(req); !vr.Valid {
		stdErr := apperrors.NewValidationFailedError("invalid decision")
		stdErr.Metadata = vr.Details()
		return stdErr
	}
	out, err := s.deps.Screening.Decide(c.Request().Context(), s.owner(c), c.Param("sessionId"), req.CandidateID, req.Decision)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) sessionReset(c echo.Context) error {
	snap, err := s.deps.Screening.Reset(c.Request().Context(), s.owner(c), c.Param("sessionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) sessionClose(c echo.Context) error {
	if err := s.deps.Screening.Close(c.Request().Context(), s.owner(c), c.Param("sessionId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ==========================
// Chat
// ==========================

func (s *Server) conversations(c echo.Context) error {
	convs, err := s.deps.Chat.Conversations(c.Request().Context(), principal(c).Account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convs)
}

func (s *Server) messages(c echo.Context) error {
	msgs, err := s.deps.Chat.Messages(c.Request().Context(), principal(c).Account, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// sendMessage answers 202: the message is accepted but not stored.
func (s *Server) sendMessage(c echo.Context) error {
	var draft chat.Draft
	if err := bind(c, &draft); err != nil {
		return err
	}
	msg, err := s.deps.Chat.Send(c.Request().Context(), principal(c).Account, c.Param("id"), draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, msg)
}
