package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for campaign start and end dates.
const DateLayout = "2006-01-02"

type Bucket string

const (
	BucketRecommended Bucket = "recommended"
	BucketActive      Bucket = "active"
	BucketArchived    Bucket = "archived"
)

// ParseBucket accepts the canonical bucket names and the aliases used by the
// dashboard ("live", "past", "recommendations").
func ParseBucket(raw string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "recommended", "recommendations":
		return BucketRecommended, nil
	case "active", "live":
		return BucketActive, nil
	case "archived", "past":
		return BucketArchived, nil
	default:
		return "", fmt.Errorf("%w: unknown bucket %q", ErrInvalidInput, raw)
	}
}

type CampaignType string

const (
	CampaignTypeSystem CampaignType = "system"
	CampaignTypeCustom CampaignType = "custom"
)

const CampaignStatusRunning = "running"

type Impact struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type Campaign struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category,omitempty"`
	Type        CampaignType `json:"type,omitempty"`
	Budget      float64      `json:"budget"`
	Impact      Impact       `json:"impact"`
	ROI         string       `json:"roi,omitempty"`
	ActualROI   string       `json:"actualROI,omitempty"`
	Channels    []string     `json:"channels"`
	StartDate   string       `json:"startDate,omitempty"`
	EndDate     string       `json:"endDate,omitempty"`
	Status      string       `json:"status,omitempty"`
	Progress    int          `json:"progress"`
	AIScore     float64      `json:"aiScore,omitempty"`
	Reasoning   string       `json:"reasoning,omitempty"`
}

func (c Campaign) clone() Campaign {
	out := c
	out.Channels = append([]string(nil), c.Channels...)
	return out
}

// NormalizeChannels trims and de-duplicates channels, keeping first-seen order.
func NormalizeChannels(channels []string) []string {
	seen := make(map[string]struct{}, len(channels))
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}

// realizedROI is the value recorded as actual ROI when a campaign is deactivated.
func (c Campaign) realizedROI() string {
	if c.ROI != "" {
		return c.ROI
	}
	if c.Impact.Percentage != 0 {
		return strconv.FormatFloat(c.Impact.Percentage, 'f', -1, 64) + "%"
	}
	return ""
}

// Board is an immutable snapshot of the three campaign buckets. Transition
// functions never modify their input and always return a fresh Board.
type Board struct {
	Version     int64      `json:"version"`
	Recommended []Campaign `json:"recommended"`
	Active      []Campaign `json:"active"`
	Archived    []Campaign `json:"archived"`
}

func EmptyBoard() Board {
	return Board{Recommended: []Campaign{}, Active: []Campaign{}, Archived: []Campaign{}}
}

func (b Board) Bucket(bucket Bucket) []Campaign {
	switch bucket {
	case BucketRecommended:
		return b.Recommended
	case BucketActive:
		return b.Active
	case BucketArchived:
		return b.Archived
	default:
		return nil
	}
}

// Locate reports which bucket currently holds the campaign.
func (b Board) Locate(id string) (Bucket, bool) {
	for _, bucket := range []Bucket{BucketRecommended, BucketActive, BucketArchived} {
		if indexOf(b.Bucket(bucket), id) >= 0 {
			return bucket, true
		}
	}
	return "", false
}

func (b Board) Find(id string) (Campaign, Bucket, bool) {
	bucket, ok := b.Locate(id)
	if !ok {
		return Campaign{}, "", false
	}
	list := b.Bucket(bucket)
	return list[indexOf(list, id)].clone(), bucket, true
}

func (b Board) Len() int {
	return len(b.Recommended) + len(b.Active) + len(b.Archived)
}

// Validate checks that no campaign id appears more than once across buckets.
func (b Board) Validate() error {
	seen := make(map[string]Bucket, b.Len())
	for _, bucket := range []Bucket{BucketRecommended, BucketActive, BucketArchived} {
		for _, c := range b.Bucket(bucket) {
			if c.ID == "" {
				return fmt.Errorf("%w: campaign without id in %s", ErrInvalidInput, bucket)
			}
			if prev, ok := seen[c.ID]; ok {
				return fmt.Errorf("%w: campaign %s in both %s and %s", ErrConflict, c.ID, prev, bucket)
			}
			seen[c.ID] = bucket
		}
	}
	return nil
}

func (b Board) clone() Board {
	return Board{
		Version:     b.Version,
		Recommended: cloneCampaigns(b.Recommended),
		Active:      cloneCampaigns(b.Active),
		Archived:    cloneCampaigns(b.Archived),
	}
}

func (b *Board) set(bucket Bucket, list []Campaign) {
	switch bucket {
	case BucketRecommended:
		b.Recommended = list
	case BucketActive:
		b.Active = list
	case BucketArchived:
		b.Archived = list
	}
}

// Today formats t as a campaign calendar date.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// Activate moves a campaign from the recommended or archived bucket into the
// active bucket, stamping its start date and running status.
func Activate(b Board, id string, from Bucket, today string) (Board, error) {
	if from != BucketRecommended && from != BucketArchived {
		return b, fmt.Errorf("%w: cannot activate from %s", ErrInvalidTransition, from)
	}
	return move(b, id, from, BucketActive, func(c *Campaign) {
		c.StartDate = today
		c.Status = CampaignStatusRunning
	})
}

// Deactivate ends an active campaign and records its realized ROI.
func Deactivate(b Board, id string, today string) (Board, error) {
	return move(b, id, BucketActive, BucketArchived, func(c *Campaign) {
		c.EndDate = today
		c.ActualROI = c.realizedROI()
	})
}

// Archive moves a recommended or active campaign into the archive without
// touching its impact or ROI.
func Archive(b Board, id string, from Bucket, today string) (Board, error) {
	if from != BucketRecommended && from != BucketActive {
		return b, fmt.Errorf("%w: cannot archive from %s", ErrInvalidTransition, from)
	}
	return move(b, id, from, BucketArchived, func(c *Campaign) {
		c.EndDate = today
	})
}

// ReplaceRecommended swaps the whole recommended bucket for incoming. Ids that
// already live in the active or archived buckets are dropped, as are repeats
// within incoming.
func ReplaceRecommended(b Board, incoming []Campaign) Board {
	next := b.clone()
	taken := make(map[string]struct{}, len(b.Active)+len(b.Archived)+len(incoming))
	for _, c := range b.Active {
		taken[c.ID] = struct{}{}
	}
	for _, c := range b.Archived {
		taken[c.ID] = struct{}{}
	}
	recommended := make([]Campaign, 0, len(incoming))
	for _, c := range incoming {
		if c.ID == "" {
			continue
		}
		if _, ok := taken[c.ID]; ok {
			continue
		}
		taken[c.ID] = struct{}{}
		c = c.clone()
		c.Channels = NormalizeChannels(c.Channels)
		recommended = append(recommended, c)
	}
	next.Recommended = recommended
	next.Version = b.Version + 1
	return next
}

func move(b Board, id string, from, to Bucket, stamp func(*Campaign)) (Board, error) {
	src := b.Bucket(from)
	idx := indexOf(src, id)
	if idx < 0 {
		return b, fmt.Errorf("%w: %s not in %s", ErrCampaignNotFound, id, from)
	}
	next := b.clone()
	moved := next.Bucket(from)[idx]
	stamp(&moved)

	remaining := make([]Campaign, 0, len(src)-1)
	remaining = append(remaining, next.Bucket(from)[:idx]...)
	remaining = append(remaining, next.Bucket(from)[idx+1:]...)
	next.set(from, remaining)
	next.set(to, append(next.Bucket(to), moved))
	next.Version = b.Version + 1
	return next, nil
}

func indexOf(list []Campaign, id string) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cloneCampaigns(in []Campaign) []Campaign {
	out := make([]Campaign, len(in))
	for i, c := range in {
		out[i] = c.clone()
	}
	return out
}
