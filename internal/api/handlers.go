package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"kitchencalc/internal/auth"
	"kitchencalc/internal/calculator"
	"kitchencalc/internal/convert"
	"kitchencalc/internal/history"
	"kitchencalc/internal/notifier"
	"kitchencalc/internal/session"
	"kitchencalc/internal/timer"
)

type Handler struct {
	session   *session.Session
	ledger    *history.Ledger
	runner    *timer.Runner
	notifier  *notifier.Notifier
	catalog   *convert.Catalog
	overrides *convert.OverrideStore
	auth      *auth.Authenticator
	now       func() time.Time
}

type Deps struct {
	Session   *session.Session
	Runner    *timer.Runner
	Notifier  *notifier.Notifier
	Catalog   *convert.Catalog
	Overrides *convert.OverrideStore
	Auth      *auth.Authenticator
}

func NewHandler(d Deps) *Handler {
	a := d.Auth
	if a == nil {
		a = auth.New("")
	}
	return &Handler{
		session:   d.Session,
		ledger:    d.Session.History(),
		runner:    d.Runner,
		notifier:  d.Notifier,
		catalog:   d.Catalog,
		overrides: d.Overrides,
		auth:      a,
		now:       time.Now,
	}
}

// TokenInfoHandler возвращает информацию о времени жизни токена
func (h *Handler) TokenInfo(w http.ResponseWriter, r *http.Request) {
	SendSuccessResponse(w, map[string]string{
		"expirationMinutes": strconv.Itoa(auth.GetTokenExpiration()),
		"authRequired":      strconv.FormatBool(h.auth.Enabled()),
	})
}

type CalculateRequest struct {
	Expression string `json:"expression"`
}

type CalculateResponse struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
}

// Calculate вычисляет выражение без участия клавиатуры и сохраняет его в историю.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := decodeBody(r, &req); err != nil {
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Expression is not valid")
		return
	}

	if strings.TrimSpace(req.Expression) == "" {
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Expression is not valid")
		return
	}

	v, err := calculator.Calc(req.Expression)
	if err != nil {
		// ошибка при вычислении выражения должна возвращать 422
		SendErrorResponse(w, http.StatusUnprocessableEntity, calculator.Describe(err))
		return
	}

	result := calculator.FormatResult(v)
	h.ledger.Append(req.Expression, result)
	SendSuccessResponse(w, CalculateResponse{Expression: req.Expression, Result: result})
}

func (h *Handler) CalculatorState(w http.ResponseWriter, r *http.Request) {
	SendSuccessResponse(w, h.session.State())
}

type KeysRequest struct {
	Keys []string `json:"keys"`
}

func (h *Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	var req KeysRequest
	if err := decodeBody(r, &req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}
	for _, k := range req.Keys {
		h.session.Press(k)
	}
	SendSuccessResponse(w, h.session.State())
}

func (h *Handler) Backspace(w http.ResponseWriter, r *http.Request) {
	h.session.Backspace()
	SendSuccessResponse(w, h.session.State())
}

func (h *Handler) ClearCalculator(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	SendSuccessResponse(w, h.session.State())
}

type SubmitResponse struct {
	Result string        `json:"result"`
	State  session.State `json:"state"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.Submit()
	if err != nil {
		SendErrorResponse(w, http.StatusUnprocessableEntity, calculator.Describe(err))
		return
	}
	SendSuccessResponse(w, SubmitResponse{Result: result, State: h.session.State()})
}

type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.ledger.Entries()
	if entries == nil {
		entries = []history.Entry{}
	}
	SendSuccessResponse(w, HistoryResponse{Entries: entries})
}

// ClearHistory требует явного ?confirm=true
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		SendErrorResponse(w, http.StatusBadRequest, "Clearing history requires confirm=true")
		return
	}
	h.ledger.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.ledger.Remove(id) {
		SendErrorResponse(w, http.StatusNotFound, "Entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TimerState(w http.ResponseWriter, r *http.Request) {
	SendSuccessResponse(w, h.runner.Wake())
}

const maxTimerSeconds = math.MaxInt64 / float64(time.Second)

type StartTimerRequest struct {
	Seconds float64 `json:"seconds"`
	Name    *string `json:"name"`
}

func (h *Handler) StartTimer(w http.ResponseWriter, r *http.Request) {
	var req StartTimerRequest
	if err := decodeBody(r, &req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Seconds < 0 {
		SendErrorResponse(w, http.StatusBadRequest, "Duration must not be negative")
		return
	}
	if req.Seconds >= maxTimerSeconds {
		SendErrorResponse(w, http.StatusBadRequest, "Duration is too long")
		return
	}
	if req.Name != nil {
		h.runner.Timer().SetName(*req.Name)
	}
	h.runner.Start(time.Duration(req.Seconds * float64(time.Second)))
	SendSuccessResponse(w, h.runner.Snapshot())
}

func (h *Handler) PauseTimer(w http.ResponseWriter, r *http.Request) {
	h.runner.Pause()
	SendSuccessResponse(w, h.runner.Snapshot())
}

func (h *Handler) ResumeTimer(w http.ResponseWriter, r *http.Request) {
	if !h.runner.Resume() {
		SendErrorResponse(w, http.StatusConflict, "Timer is not paused")
		return
	}
	SendSuccessResponse(w, h.runner.Snapshot())
}

func (h *Handler) ResetTimer(w http.ResponseWriter, r *http.Request) {
	h.runner.Reset()
	SendSuccessResponse(w, h.runner.Snapshot())
}

type NotificationResponse struct {
	notifier.Overlay
	Opacity float64 `json:"opacity"`
}

func (h *Handler) Notification(w http.ResponseWriter, r *http.Request) {
	SendSuccessResponse(w, NotificationResponse{
		Overlay: h.notifier.Overlay(),
		Opacity: h.notifier.Pulse(h.now()),
	})
}

func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	h.notifier.Dismiss()
	SendSuccessResponse(w, NotificationResponse{Overlay: h.notifier.Overlay()})
}

type ConvertRequest struct {
	Value float64 `json:"value"`
	From  string  `json:"from"`
	To    string  `json:"to"`
}

type ConvertResponse struct {
	ConvertRequest
	Result    float64 `json:"result"`
	Formatted string  `json:"formatted"`
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := decodeBody(r, &req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}
	v, err := convert.Convert(req.Value, req.From, req.To)
	if err != nil {
		SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	SendSuccessResponse(w, ConvertResponse{ConvertRequest: req, Result: v, Formatted: calculator.FormatResult(v)})
}

type PartsRequest struct {
	Total float64        `json:"total"`
	Parts []convert.Part `json:"parts"`
	Ratio string         `json:"ratio"`
}

type PartsResponse struct {
	Portions []convert.Portion `json:"portions"`
}

func (h *Handler) Parts(w http.ResponseWriter, r *http.Request) {
	var req PartsRequest
	if err := decodeBody(r, &req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	parts := req.Parts
	if req.Ratio != "" {
		parsed, err := convert.ParseRatio(req.Ratio)
		if err != nil {
			SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		parts = parsed
	}

	portions, err := convert.ScaleParts(parts, req.Total)
	if err != nil {
		SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	SendSuccessResponse(w, PartsResponse{Portions: portions})
}

func (h *Handler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	list := h.catalog.List()
	for i, ing := range list {
		list[i] = h.resolve(r.Context(), ing)
	}
	SendSuccessResponse(w, map[string][]convert.Ingredient{"ingredients": list})
}

func (h *Handler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	ing, ok := h.lookupIngredient(w, r)
	if !ok {
		return
	}
	SendSuccessResponse(w, h.resolve(r.Context(), ing))
}

func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	ing, ok := h.lookupIngredient(w, r)
	if !ok {
		return
	}
	var o convert.Override
	if err := decodeBody(r, &o); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}
	h.overrides.Set(ing.ID, o)
	SendSuccessResponse(w, o.Apply(ing))
}

func (h *Handler) RemoveOverride(w http.ResponseWriter, r *http.Request) {
	ing, ok := h.lookupIngredient(w, r)
	if !ok {
		return
	}
	h.overrides.Remove(ing.ID)
	SendSuccessResponse(w, ing)
}

func (h *Handler) lookupIngredient(w http.ResponseWriter, r *http.Request) (convert.Ingredient, bool) {
	ing, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, convert.ErrUnknownIngredient) {
			SendErrorResponse(w, http.StatusNotFound, "Ingredient not found")
		} else {
			SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		}
		return convert.Ingredient{}, false
	}
	return ing, true
}

func (h *Handler) resolve(ctx context.Context, ing convert.Ingredient) convert.Ingredient {
	if h.overrides == nil {
		return ing
	}
	if o, ok := h.overrides.Get(ctx, ing.ID); ok {
		return o.Apply(ing)
	}
	return ing
}
