package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"
)

//go:embed seed.toml
var seedTOML []byte

type document struct {
	Account      Account      `toml:"account"`
	Instructors  []Instructor `toml:"instructors"`
	Availability []Day        `toml:"availability"`
	Threads      []ThreadSeed `toml:"threads"`
}

// Catalog is the read-only marketplace data set. Every accessor returns
// copies, so callers may mutate what they get back.
type Catalog struct {
	account     Account
	instructors []Instructor
	days        map[string][]Slot
	dates       []string
	threads     []ThreadSeed
}

// Load decodes the embedded seed document.
func Load() (*Catalog, error) {
	return Parse(seedTOML)
}

// Parse decodes a catalog document and checks it for duplicate keys.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown catalog keys: %v", undecoded)
	}

	c := &Catalog{
		account:     doc.Account,
		instructors: doc.Instructors,
		days:        make(map[string][]Slot, len(doc.Availability)),
		threads:     doc.Threads,
	}

	seen := make(map[int64]bool, len(doc.Instructors))
	for _, in := range doc.Instructors {
		if seen[in.ID] {
			return nil, fmt.Errorf("duplicate instructor id %d", in.ID)
		}
		seen[in.ID] = true
	}

	for _, d := range doc.Availability {
		if _, dup := c.days[d.Date]; dup {
			return nil, fmt.Errorf("duplicate availability date %s", d.Date)
		}
		c.days[d.Date] = d.Slots
		c.dates = append(c.dates, d.Date)
	}
	sort.Strings(c.dates)

	threadIDs := make(map[int64]bool, len(doc.Threads))
	for _, t := range doc.Threads {
		if threadIDs[t.ID] {
			return nil, fmt.Errorf("duplicate thread id %d", t.ID)
		}
		threadIDs[t.ID] = true
	}

	return c, nil
}

// Account returns the account that sends messages from this client.
func (c *Catalog) Account() Account {
	return c.account
}

// Instructors returns the instructor list in seed order.
func (c *Catalog) Instructors() []Instructor {
	out := make([]Instructor, len(c.instructors))
	for i, in := range c.instructors {
		out[i] = cloneInstructor(in)
	}
	return out
}

func (c *Catalog) Instructor(id int64) (Instructor, bool) {
	for _, in := range c.instructors {
		if in.ID == id {
			return cloneInstructor(in), true
		}
	}
	return Instructor{}, false
}

// Dates lists every date of the availability table in ascending order.
func (c *Catalog) Dates() []string {
	return slices.Clone(c.dates)
}

// Slots returns all slots, open or not, for a date.
func (c *Catalog) Slots(date string) ([]Slot, bool) {
	slots, ok := c.days[date]
	if !ok {
		return nil, false
	}
	return slices.Clone(slots), true
}

// OpenTimes lists the bookable times of a date.
func (c *Catalog) OpenTimes(date string) []string {
	var times []string
	for _, s := range c.days[date] {
		if s.Open {
			times = append(times, s.Time)
		}
	}
	return times
}

// Slot finds a single slot by date and time.
func (c *Catalog) Slot(date, time string) (Slot, bool) {
	for _, s := range c.days[date] {
		if s.Time == time {
			return s, true
		}
	}
	return Slot{}, false
}

func (c *Catalog) Threads() []ThreadSeed {
	out := make([]ThreadSeed, len(c.threads))
	for i, t := range c.threads {
		out[i] = cloneThread(t)
	}
	return out
}

// Messages returns the sample conversation of one thread.
func (c *Catalog) Messages(threadID int64) []MessageSeed {
	for _, t := range c.threads {
		if t.ID == threadID {
			return cloneThread(t).Messages
		}
	}
	return nil
}

func cloneInstructor(in Instructor) Instructor {
	in.Specialties = slices.Clone(in.Specialties)
	in.LessonModes = slices.Clone(in.LessonModes)
	in.AgeGroups = slices.Clone(in.AgeGroups)
	return in
}

func cloneThread(t ThreadSeed) ThreadSeed {
	msgs := make([]MessageSeed, len(t.Messages))
	for i, m := range t.Messages {
		m.Attachments = slices.Clone(m.Attachments)
		msgs[i] = m
	}
	t.Messages = msgs
	return t
}
