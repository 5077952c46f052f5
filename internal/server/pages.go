package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kartoza/premium-estimator/internal/estimator"
	"github.com/kartoza/premium-estimator/internal/premium"
)

const (
	themeCookie = "theme"
	themeLight  = "Light"
	themeDark   = "Dark"
)

// formValues echoes the submitted form back into the page
type formValues struct {
	Age      string
	Sex      string
	BMI      string
	Children string
	Smoker   string
	Region   string
}

func defaultForm() formValues {
	return formValues{
		Age:      "25",
		Sex:      premium.SexMale.String(),
		BMI:      "20.0",
		Children: "0",
		Smoker:   premium.SmokerNo.String(),
		Region:   premium.RegionNortheast.String(),
	}
}

type pageData struct {
	Theme      string
	ModelReady bool
	Form       formValues
	Regions    []string
	Profile    *profileView
	Result     *resultView
	Error      string
	Limits     limits
}

type limits struct {
	MinAge, MaxAge           int
	MinBMI, MaxBMI           float64
	MinChildren, MaxChildren int
}

var inputLimits = limits{
	MinAge: premium.MinAge, MaxAge: premium.MaxAge,
	MinBMI: premium.MinBMI, MaxBMI: premium.MaxBMI,
	MinChildren: premium.MinChildren, MaxChildren: premium.MaxChildren,
}

func (s *Server) newPage(r *http.Request, form formValues) *pageData {
	_, err := s.handle.Get()

	regions := make([]string, len(premium.Regions))
	for i, region := range premium.Regions {
		regions[i] = region.String()
	}

	return &pageData{
		Theme:      themeFrom(r),
		ModelReady: err == nil,
		Form:       form,
		Regions:    regions,
		Limits:     inputLimits,
	}
}

// handleIndex renders the empty form with default values
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := s.newPage(r, defaultForm())
	if in, err := parseForm(page.Form); err == nil {
		page.Profile = newProfileView(in)
	}
	s.render(w, http.StatusOK, page)
}

// handleEstimate runs a prediction for the submitted form
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.estimator.Reject()
		page := s.newPage(r, defaultForm())
		page.Error = "Could not read the submitted form."
		s.render(w, http.StatusBadRequest, page)
		return
	}

	form := formValues{
		Age:      r.PostFormValue("age"),
		Sex:      r.PostFormValue("sex"),
		BMI:      r.PostFormValue("bmi"),
		Children: r.PostFormValue("children"),
		Smoker:   r.PostFormValue("smoker"),
		Region:   r.PostFormValue("region"),
	}
	page := s.newPage(r, form)
	if !page.ModelReady {
		s.estimator.Reject()
		s.render(w, http.StatusServiceUnavailable, page)
		return
	}

	in, err := parseForm(form)
	if err == nil {
		page.Profile = newProfileView(in)
		var est *estimator.Estimate
		est, err = s.estimator.Estimate(r.Context(), in)
		if err == nil {
			page.Result = newResultView(est)
			s.render(w, http.StatusOK, page)
			return
		}
	} else {
		s.estimator.Reject()
	}

	status, message := describeError(err)
	s.logger.Warn("estimate failed", slog.Int("status", status), slog.Any("error", err))
	page.Error = message
	s.render(w, status, page)
}

// handleTheme flips between the light and dark stylesheet
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := themeDark
	if themeFrom(r) == themeDark {
		next = themeLight
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func themeFrom(r *http.Request) string {
	if c, err := r.Cookie(themeCookie); err == nil && c.Value == themeDark {
		return themeDark
	}
	return themeLight
}

func (s *Server) render(w http.ResponseWriter, status int, page *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.ExecuteTemplate(w, "index.html", page); err != nil {
		s.logger.Error("rendering page", slog.Any("error", err))
	}
}

// parseForm converts raw form strings into a domain input. Ranges are
// checked later by Input.Validate.
func parseForm(f formValues) (premium.Input, error) {
	var in premium.Input
	var err error

	if in.Age, err = strconv.Atoi(strings.TrimSpace(f.Age)); err != nil {
		return in, &premium.FieldError{Kind: premium.ErrInvalidInput, Field: "age", Value: f.Age, Reason: "must be a whole number"}
	}
	if in.Sex, err = premium.ParseSex(f.Sex); err != nil {
		return in, err
	}
	if in.BMI, err = strconv.ParseFloat(strings.TrimSpace(f.BMI), 64); err != nil {
		return in, &premium.FieldError{Kind: premium.ErrInvalidInput, Field: "bmi", Value: f.BMI, Reason: "must be a number"}
	}
	if in.Children, err = strconv.Atoi(strings.TrimSpace(f.Children)); err != nil {
		return in, &premium.FieldError{Kind: premium.ErrInvalidInput, Field: "children", Value: f.Children, Reason: "must be a whole number"}
	}
	if in.Smoker, err = premium.ParseSmoker(f.Smoker); err != nil {
		return in, err
	}
	if in.Region, err = premium.ParseRegion(f.Region); err != nil {
		return in, err
	}
	return in, nil
}

// describeError maps an error kind to a status and a user-facing message
func describeError(err error) (int, string) {
	var fe *premium.FieldError
	hasField := errors.As(err, &fe)

	switch {
	case errors.Is(err, premium.ErrModelUnavailable):
		return http.StatusServiceUnavailable,
			"Cannot load the machine learning model. Please check that the model file exists."
	case errors.Is(err, premium.ErrInvalidInput):
		if hasField {
			return http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s.", fe.Field, fe.Reason)
		}
		return http.StatusBadRequest, "Invalid input."
	case errors.Is(err, premium.ErrEncoding):
		if hasField {
			return http.StatusBadRequest, fmt.Sprintf("Could not prepare %s for the model: %s.", fe.Field, fe.Reason)
		}
		return http.StatusBadRequest, "Could not prepare your details for the model."
	case errors.Is(err, premium.ErrPredictionAnomaly):
		return http.StatusBadGateway, "The model returned an invalid estimate for these details."
	case errors.Is(err, premium.ErrModel):
		return http.StatusBadGateway, fmt.Sprintf("Error making prediction: %v", err)
	}
	return http.StatusInternalServerError, "Unexpected error while estimating your premium."
}
