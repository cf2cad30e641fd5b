package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ranktutor/ranktutor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subject(name string) *models.Subject {
	return &models.Subject{ID: uuid.New(), Name: name}
}

func TestDistance(t *testing.T) {
	delhi := struct{ lat, lon float64 }{28.6139, 77.2090}
	mumbai := struct{ lat, lon float64 }{19.0760, 72.8777}

	t.Run("known city pair", func(t *testing.T) {
		d, ok := Distance(&delhi.lat, &delhi.lon, &mumbai.lat, &mumbai.lon)
		require.True(t, ok)
		// Delhi to Mumbai is roughly 1150 km great-circle.
		assert.InDelta(t, 1150, d, 30)
	})

	t.Run("same point is zero", func(t *testing.T) {
		d, ok := Distance(&delhi.lat, &delhi.lon, &delhi.lat, &delhi.lon)
		require.True(t, ok)
		assert.InDelta(t, 0, d, 0.001)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		_, ok := Distance(&delhi.lat, &delhi.lon, nil, &mumbai.lon)
		assert.False(t, ok)
	})
}

func TestFilterByProximity(t *testing.T) {
	lat, lon := 28.6139, 77.2090
	nearLat, nearLon := 28.6200, 77.2100
	farLat, farLon := 19.0760, 72.8777

	near := &models.TutorProfile{ID: uuid.New(), Latitude: &nearLat, Longitude: &nearLon}
	far := &models.TutorProfile{ID: uuid.New(), Latitude: &farLat, Longitude: &farLon}
	unknown := &models.TutorProfile{ID: uuid.New()}
	pool := []*models.TutorProfile{near, far, unknown}

	t.Run("keeps only tutors within radius", func(t *testing.T) {
		got := FilterByProximity(pool, &lat, &lon, 10)
		require.Len(t, got, 1)
		assert.Equal(t, near.ID, got[0].ID)
	})

	t.Run("no point passes pool through", func(t *testing.T) {
		got := FilterByProximity(pool, nil, nil, 10)
		assert.Len(t, got, 3)
	})
}

func TestQualityScore(t *testing.T) {
	t.Run("empty profile scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, QualityScore(&models.TutorProfile{}))
	})

	t.Run("full profile caps at 100", func(t *testing.T) {
		tutor := &models.TutorProfile{
			Bio:                     strings.Repeat("Experienced tutor. ", 4),
			Subjects:                []*models.Subject{subject("Math")},
			ProfileComplete:         true,
			IsVerified:              true,
			HasAcademicVerification: true,
			HasIDVerification:       true,
			HasPoliceVerification:   true,
			HasBackgroundCheck:      true,
			AverageRating:           5,
			TotalReviews:            25,
			YearsOfExperience:       10,
		}
		assert.Equal(t, 100.0, QualityScore(tutor))
	})

	t.Run("badges cap at 20 points", func(t *testing.T) {
		threeBadges := &models.TutorProfile{
			HasAcademicVerification: true,
			HasIDVerification:       true,
			HasPoliceVerification:   true,
		}
		fourBadges := &models.TutorProfile{
			HasAcademicVerification: true,
			HasIDVerification:       true,
			HasPoliceVerification:   true,
			HasBackgroundCheck:      true,
		}
		assert.Equal(t, 15.0, QualityScore(threeBadges))
		assert.Equal(t, 20.0, QualityScore(fourBadges))
	})

	t.Run("review tiers", func(t *testing.T) {
		assert.Equal(t, 5.0, QualityScore(&models.TutorProfile{TotalReviews: 5}))
		assert.Equal(t, 10.0, QualityScore(&models.TutorProfile{TotalReviews: 10}))
	})

	t.Run("experience tiers", func(t *testing.T) {
		assert.Equal(t, 0.0, QualityScore(&models.TutorProfile{YearsOfExperience: 2}))
		assert.Equal(t, 5.0, QualityScore(&models.TutorProfile{YearsOfExperience: 3}))
		assert.Equal(t, 10.0, QualityScore(&models.TutorProfile{YearsOfExperience: 5}))
	})
}

func TestMatchScore(t *testing.T) {
	math := subject("Mathematics")
	physics := subject("Physics")

	t.Run("end to end weights", func(t *testing.T) {
		student := &models.StudentProfile{
			PreferredSubjects: []*models.Subject{math, physics},
			GradeLevel:        models.LevelSecondary,
			PreferredMode:     models.ModeOnline,
		}
		tutor := &models.TutorProfile{
			Subjects:          []*models.Subject{math},
			TeachingLevels:    models.LevelAll,
			IsAvailableOnline: true,
			AverageRating:     5,
			IsVerified:        true,
			YearsOfExperience: 6,
		}
		// (1/2)*30 + 20 + 15 + 20 + 10 + 5
		assert.Equal(t, 85.0, MatchScore(tutor, student))
	})

	t.Run("no preferred subjects contributes zero overlap", func(t *testing.T) {
		student := &models.StudentProfile{PreferredMode: models.ModeBoth}
		tutor := &models.TutorProfile{Subjects: []*models.Subject{math}}
		assert.Equal(t, 15.0, MatchScore(tutor, student))
	})

	t.Run("level matches on exact or all", func(t *testing.T) {
		student := &models.StudentProfile{GradeLevel: models.LevelPrimary, PreferredMode: models.ModeOnline}
		exact := &models.TutorProfile{TeachingLevels: models.LevelPrimary}
		all := &models.TutorProfile{TeachingLevels: models.LevelAll}
		other := &models.TutorProfile{TeachingLevels: models.LevelGraduate}

		assert.Equal(t, 20.0, MatchScore(exact, student))
		assert.Equal(t, 20.0, MatchScore(all, student))
		assert.Equal(t, 0.0, MatchScore(other, student))
	})

	t.Run("mode preference", func(t *testing.T) {
		homeStudent := &models.StudentProfile{PreferredMode: models.ModeHome}
		onlineOnly := &models.TutorProfile{IsAvailableOnline: true}
		homeTutor := &models.TutorProfile{IsAvailableHome: true}

		assert.Equal(t, 0.0, MatchScore(onlineOnly, homeStudent))
		assert.Equal(t, 15.0, MatchScore(homeTutor, homeStudent))
	})

	t.Run("score stays within range", func(t *testing.T) {
		student := &models.StudentProfile{
			PreferredSubjects: []*models.Subject{math},
			GradeLevel:        models.LevelAll,
			PreferredMode:     models.ModeBoth,
		}
		tutor := &models.TutorProfile{
			Subjects:          []*models.Subject{math, physics},
			TeachingLevels:    models.LevelAll,
			IsAvailableOnline: true,
			IsAvailableHome:   true,
			AverageRating:     5,
			IsVerified:        true,
			YearsOfExperience: 20,
		}
		score := MatchScore(tutor, student)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	})
}

func TestRecommendTutors(t *testing.T) {
	math := subject("Mathematics")
	student := &models.StudentProfile{
		PreferredSubjects: []*models.Subject{math},
		PreferredMode:     models.ModeOnline,
	}

	strong := &models.TutorProfile{ID: uuid.New(), Subjects: []*models.Subject{math}, IsAvailableOnline: true, AverageRating: 5}
	weak := &models.TutorProfile{ID: uuid.New()}

	t.Run("orders by score and truncates", func(t *testing.T) {
		got := RecommendTutors(student, []*models.TutorProfile{weak, strong}, 1)
		require.Len(t, got, 1)
		assert.Equal(t, strong.ID, got[0].Tutor.ID)
	})

	t.Run("ties break on rating then id", func(t *testing.T) {
		a := &models.TutorProfile{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), AverageRating: 4}
		b := &models.TutorProfile{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), AverageRating: 4}
		c := &models.TutorProfile{ID: uuid.New(), AverageRating: 5}

		got := RecommendTutors(&models.StudentProfile{}, []*models.TutorProfile{b, a, c}, 0)
		require.Len(t, got, 3)
		assert.Equal(t, c.ID, got[0].Tutor.ID)
		assert.Equal(t, a.ID, got[1].Tutor.ID)
		assert.Equal(t, b.ID, got[2].Tutor.ID)
	})
}

func TestSortSearchResults(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)

	price := func(v float64) *float64 { return &v }
	sub := func(kind string) []*models.PremiumSubscription {
		return []*models.PremiumSubscription{{SubscriptionType: kind, IsActive: true, EndDate: future}}
	}

	premium := &models.TutorProfile{ID: uuid.New(), PremiumSubscriptions: sub("premium")}
	featured := &models.TutorProfile{ID: uuid.New(), IsFeatured: true}
	boosted := &models.TutorProfile{ID: uuid.New(), PremiumBoostUntil: &future}
	plain := &models.TutorProfile{ID: uuid.New(), AverageRating: 5}

	t.Run("paid visibility outranks everything", func(t *testing.T) {
		results := []ScoredTutor{
			{Tutor: plain, MatchScore: 100},
			{Tutor: boosted},
			{Tutor: featured},
			{Tutor: premium},
		}
		SortSearchResults(results, true, now)

		assert.Equal(t, premium.ID, results[0].Tutor.ID)
		assert.Equal(t, featured.ID, results[1].Tutor.ID)
		assert.Equal(t, boosted.ID, results[2].Tutor.ID)
		assert.Equal(t, plain.ID, results[3].Tutor.ID)
	})

	t.Run("same tier falls through to match score then rating then price", func(t *testing.T) {
		cheap := &models.TutorProfile{ID: uuid.New(), AverageRating: 4, HourlyRate: price(400)}
		costly := &models.TutorProfile{ID: uuid.New(), AverageRating: 4, HourlyRate: price(900)}
		rated := &models.TutorProfile{ID: uuid.New(), AverageRating: 5, HourlyRate: price(900)}
		scored := &models.TutorProfile{ID: uuid.New(), AverageRating: 1, HourlyRate: price(900)}

		results := []ScoredTutor{
			{Tutor: costly, MatchScore: 50},
			{Tutor: scored, MatchScore: 80},
			{Tutor: cheap, MatchScore: 50},
			{Tutor: rated, MatchScore: 50},
		}
		SortSearchResults(results, true, now)

		assert.Equal(t, scored.ID, results[0].Tutor.ID)
		assert.Equal(t, rated.ID, results[1].Tutor.ID)
		assert.Equal(t, cheap.ID, results[2].Tutor.ID)
		assert.Equal(t, costly.ID, results[3].Tutor.ID)
	})

	t.Run("nil price sorts last", func(t *testing.T) {
		priced := &models.TutorProfile{ID: uuid.New(), HourlyRate: price(500)}
		unpriced := &models.TutorProfile{ID: uuid.New()}

		results := []ScoredTutor{{Tutor: unpriced}, {Tutor: priced}}
		SortSearchResults(results, false, now)

		assert.Equal(t, priced.ID, results[0].Tutor.ID)
	})

	t.Run("expired boost drops to the base tier", func(t *testing.T) {
		past := now.Add(-time.Hour)
		expired := &models.TutorProfile{ID: uuid.New(), PremiumBoostUntil: &past, AverageRating: 2}
		regular := &models.TutorProfile{ID: uuid.New(), AverageRating: 4}

		results := []ScoredTutor{{Tutor: expired}, {Tutor: regular}}
		SortSearchResults(results, false, now)

		assert.Equal(t, regular.ID, results[0].Tutor.ID)
	})
}
