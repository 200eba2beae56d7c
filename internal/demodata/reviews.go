package demodata

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/streamssr/streamssr/internal/section"
)

// Review is a customer review.
type Review struct {
	ID      int
	Author  string
	Avatar  string
	Rating  int
	Date    time.Time
	Content string
	Helpful int
}

var (
	firstNames = []string{"Alex", "Sarah", "Marcus", "Emily", "James", "Olivia", "Daniel", "Sophia", "Michael", "Emma", "David", "Isabella", "Chris", "Mia", "Andrew", "Ava", "Ryan", "Luna", "Kevin", "Chloe"}
	lastNames  = []string{"Chen", "Johnson", "Williams", "Rodriguez", "Kim", "Patel", "Anderson", "Martinez", "Taylor", "Thomas", "Lee", "Garcia", "Brown", "Davis", "Wilson", "Moore", "Jackson", "White", "Harris", "Clark"}
	avatars    = []string{"👨‍💻", "👩‍🔬", "👨‍🎨", "👩‍💼", "👨‍🔧", "👩‍🏫", "👨‍⚕️", "👩‍🚀", "👨‍🍳", "👩‍🎤", "🧑‍💻", "🧑‍🔬", "🧑‍🎨", "🧑‍💼", "👴", "👵", "🧔", "👱‍♀️"}

	positiveIntros = []string{
		"Absolutely revolutionary!",
		"Game-changing product!",
		"Exceeded all expectations!",
		"Best purchase I've ever made!",
		"Incredible quality!",
		"Simply amazing!",
		"Outstanding performance!",
		"Highly recommended!",
	}

	negativeIntros = []string{
		"Disappointed with this purchase.",
		"Could be better.",
		"Not what I expected.",
		"Has some issues.",
		"Average at best.",
	}

	reviewMiddles = []string{
		"The streaming SSR implementation is incredibly smooth.",
		"Page loads feel instant, and the progressive enhancement is seamless.",
		"Our interactive components now load in order of priority.",
		"Core Web Vitals improved dramatically after implementation.",
		"The static shell approach means users see content immediately.",
		"Time to First Byte went from 800ms to under 50ms.",
		"Users are loving the snappy experience!",
		"The selective hydration feature is a game-changer.",
		"Integration was straightforward and well-documented.",
		"Performance metrics are through the roof.",
		"Customer satisfaction increased by 40%.",
		"Bounce rates dropped significantly.",
		"Mobile experience is now buttery smooth.",
		"SEO rankings improved within weeks.",
	}

	reviewEndings = []string{
		"Best investment for our platform.",
		"Will definitely recommend to others.",
		"Looking forward to future updates.",
		"Worth every penny.",
		"Five stars without hesitation.",
		"Team productivity has increased.",
		"Already planning to expand usage.",
		"Only wish I had found it sooner.",
	}
)

// Reviews returns a generator of 2 to 6 reviews dated within the 30 days
// before now().
func Reviews(now func() time.Time) func(r *rand.Rand) ([]Review, error) {
	return func(r *rand.Rand) ([]Review, error) {
		today := now()
		count := 2 + r.IntN(5)
		reviews := make([]Review, count)
		for i := range reviews {
			reviews[i] = newReview(r, i+1, today)
		}
		return reviews, nil
	}
}

func newReview(r *rand.Rand, id int, today time.Time) Review {
	rating := 3 + r.IntN(3)
	positive := rating >= 4

	parts := make([]string, 0, 5)
	if positive {
		parts = append(parts, pick(r, positiveIntros))
	} else {
		parts = append(parts, pick(r, negativeIntros))
	}

	middles := 1 + r.IntN(3)
	for _, idx := range r.Perm(len(reviewMiddles))[:middles] {
		parts = append(parts, reviewMiddles[idx])
	}
	if positive {
		parts = append(parts, pick(r, reviewEndings))
	}

	y, m, d := today.Date()
	date := time.Date(y, m, d-r.IntN(30), 0, 0, 0, 0, today.Location())

	return Review{
		ID:      id,
		Author:  pick(r, firstNames) + " " + pick(r, lastNames),
		Avatar:  pick(r, avatars),
		Rating:  rating,
		Date:    date,
		Content: strings.Join(parts, " "),
		Helpful: r.IntN(100),
	}
}

// ReviewsSource is the reviews section source: 800ms to 4.8s latency.
func ReviewsSource(now func() time.Time) section.Source[Review] {
	if now == nil {
		now = time.Now
	}
	return section.Source[Review]{
		Name:     "reviews",
		MinDelay: 800 * time.Millisecond,
		MaxDelay: 4800 * time.Millisecond,
		Generate: Reviews(now),
	}
}
