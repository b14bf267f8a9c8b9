package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// MaxFileSizeMB is the largest accepted upload
	MaxFileSizeMB    = 10
	maxFileSizeBytes = MaxFileSizeMB * 1024 * 1024

	// SignedInUploadLimit and AnonymousUploadLimit cap the pending list
	SignedInUploadLimit  = 10
	AnonymousUploadLimit = 5

	// AnonymousUpscaleLimit is the number of upscales allowed without an account
	AnonymousUpscaleLimit = 5
)

var (
	// ErrPremiumRequired is returned when a free account lacks the credits
	// for the requested work. No request was sent.
	ErrPremiumRequired = errors.New("not enough credits, premium required")

	// ErrFreeLimitReached is returned once an anonymous caller used all
	// free upscales. No request was sent.
	ErrFreeLimitReached = errors.New("anonymous upscale limit reached")
)

// ItemStatus is the lifecycle state of a pending image
type ItemStatus string

const (
	ItemIdle      ItemStatus = "idle"
	ItemLoading   ItemStatus = "loading"
	ItemSucceeded ItemStatus = "succeeded"
	ItemFailed    ItemStatus = "failed"
)

// File is a local image picked for upload
type File struct {
	Name        string
	ContentType string // optional; sniffed from Data when empty
	Data        []byte
}

// Item is one pending image
type Item struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
	Preview     string // data URL of the original
	UpscaledURL string
	Scale       float64
	Status      ItemStatus
	Error       string
}

// State is a copy of the orchestrator state
type State struct {
	Items         []Item
	Processing    bool
	LastError     string
	PremiumPrompt bool
}

// Upscaler runs the upscale pipeline. *Client implements it.
type Upscaler interface {
	UpscaleImage(ctx context.Context, in UpscaleImageInput) UpscaleOutcome
}

// UserSource exposes the signed-in user. *SessionManager implements it.
type UserSource interface {
	CurrentUser() *CurrentUser
	Refresh(ctx context.Context) error
}

// Orchestrator holds a list of pending images and upscales them one at a
// time. Its credit checks only avoid pointless requests; the server ledger
// decides.
type Orchestrator struct {
	api    Upscaler
	users  UserSource
	logger Logger

	mu             sync.Mutex
	items          []*Item
	lastError      string
	premiumPrompt  bool
	anonymousCount int
}

// NewOrchestrator creates an orchestrator. users and log may be nil.
func NewOrchestrator(api Upscaler, users UserSource, log Logger) *Orchestrator {
	if log == nil {
		log = nopLogger{}
	}
	return &Orchestrator{
		api:    api,
		users:  users,
		logger: log,
	}
}

func (o *Orchestrator) currentUser() *CurrentUser {
	if o.users == nil {
		return nil
	}
	return o.users.CurrentUser()
}

// UploadLimit returns the maximum number of pending images
func (o *Orchestrator) UploadLimit() int {
	if o.currentUser() != nil {
		return SignedInUploadLimit
	}
	return AnonymousUploadLimit
}

// AddFiles adds the image files to the pending list and returns the new
// item ids. Rejections are reported through State.LastError.
func (o *Orchestrator) AddFiles(files []File) []string {
	limit := o.UploadLimit()

	o.mu.Lock()
	defer o.mu.Unlock()

	var accepted []*Item
	for _, f := range files {
		contentType := detectContentType(f)
		if !strings.HasPrefix(contentType, "image/") {
			continue
		}
		if len(f.Data) > maxFileSizeBytes {
			o.lastError = fmt.Sprintf("Image \"%s\" is too large. Please upload files smaller than %dMB.", f.Name, MaxFileSizeMB)
			continue
		}
		accepted = append(accepted, &Item{
			ID:          uuid.NewString(),
			Name:        f.Name,
			ContentType: contentType,
			Size:        int64(len(f.Data)),
			Preview:     "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data),
			Status:      ItemIdle,
		})
	}

	if len(accepted) == 0 {
		return nil
	}

	remaining := limit - len(o.items)
	if remaining < 0 {
		remaining = 0
	}
	if len(accepted) > remaining {
		o.lastError = fmt.Sprintf("You can only upload %d more images.", remaining)
		return nil
	}

	ids := make([]string, 0, len(accepted))
	for _, it := range accepted {
		o.items = append(o.items, it)
		ids = append(ids, it.ID)
	}
	o.lastError = ""
	return ids
}

func detectContentType(f File) string {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f.ContentType
	}
	mtype := mimetype.Detect(f.Data).String()
	if i := strings.IndexByte(mtype, ';'); i >= 0 {
		mtype = mtype[:i]
	}
	return mtype
}

// Upscale runs the pipeline for one item. Unknown or busy ids are a no-op.
// Pipeline failures are stored on the item; the returned error is only
// set when a local check stopped the request.
func (o *Orchestrator) Upscale(ctx context.Context, id string, scale float64) error {
	if scale == 0 {
		scale = DefaultScale
	}
	user := o.currentUser()

	o.mu.Lock()
	item := o.find(id)
	if item == nil || item.Status == ItemLoading {
		o.mu.Unlock()
		return nil
	}

	if user != nil && !user.IsPremium && user.Credits < 1 {
		o.premiumPrompt = true
		o.mu.Unlock()
		return ErrPremiumRequired
	}
	if user == nil && o.anonymousCount >= AnonymousUpscaleLimit {
		o.lastError = fmt.Sprintf("You have used your %d free upscales. Please sign in to continue.", AnonymousUpscaleLimit)
		o.mu.Unlock()
		return ErrFreeLimitReached
	}

	item.Status = ItemLoading
	item.Error = ""
	size := item.Size
	in := UpscaleImageInput{
		ImageURL:      item.Preview,
		Scale:         scale,
		FileSizeBytes: &size,
	}
	if user != nil {
		in.UserID = user.ID
	}
	o.mu.Unlock()

	outcome, err := o.run(ctx, in)

	if err == nil && outcome.Success && user != nil {
		if rerr := o.users.Refresh(ctx); rerr != nil {
			o.logger.ErrorWithErr(rerr, "Failed to refresh user after upscale")
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if item = o.find(id); item != nil {
		switch {
		case err != nil:
			item.Status = ItemFailed
			item.Error = "Error: " + err.Error()
		case outcome.Success:
			item.Status = ItemSucceeded
			item.UpscaledURL = outcome.URL
			item.Scale = scale
		default:
			item.Status = ItemFailed
			item.Error = outcome.Error
			if item.Error == "" {
				item.Error = "Failed to upscale"
			}
		}
	}
	if err == nil && outcome.Success && user == nil {
		o.anonymousCount++
	}

	return nil
}

// run calls the pipeline and turns a panic into an error
func (o *Orchestrator) run(ctx context.Context, in UpscaleImageInput) (outcome UpscaleOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return o.api.UpscaleImage(ctx, in), nil
}

// UpscaleAll upscales every item without a result, one after another
func (o *Orchestrator) UpscaleAll(ctx context.Context, scale float64) error {
	user := o.currentUser()

	o.mu.Lock()
	var targets []string
	for _, it := range o.items {
		if it.Status != ItemSucceeded && it.Status != ItemLoading {
			targets = append(targets, it.ID)
		}
	}
	if user != nil && !user.IsPremium && user.Credits < int64(len(targets)) {
		o.premiumPrompt = true
		o.mu.Unlock()
		return ErrPremiumRequired
	}
	o.mu.Unlock()

	for _, id := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.Upscale(ctx, id, scale); err != nil {
			return err
		}
	}
	return nil
}

// Remove drops an item from the list
func (o *Orchestrator) Remove(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, it := range o.items {
		if it.ID == id {
			o.items = append(o.items[:i], o.items[i+1:]...)
			return
		}
	}
}

// Redo returns a finished item to idle
func (o *Orchestrator) Redo(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if it := o.find(id); it != nil && it.Status != ItemLoading {
		it.Status = ItemIdle
		it.UpscaledURL = ""
		it.Error = ""
		it.Scale = 0
	}
}

// Reset clears the list and the last error
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.items = nil
	o.lastError = ""
}

// DismissPremiumPrompt hides the upgrade prompt
func (o *Orchestrator) DismissPremiumPrompt() {
	o.mu.Lock()
	o.premiumPrompt = false
	o.mu.Unlock()
}

// Snapshot returns a copy of the current state
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := State{
		Items:         make([]Item, 0, len(o.items)),
		LastError:     o.lastError,
		PremiumPrompt: o.premiumPrompt,
	}
	for _, it := range o.items {
		s.Items = append(s.Items, *it)
		if it.Status == ItemLoading {
			s.Processing = true
		}
	}
	return s
}

func (o *Orchestrator) find(id string) *Item {
	for _, it := range o.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}
