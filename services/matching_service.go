package services

import (
	"math"
	"sort"
	"time"

	"github.com/ranktutor/ranktutor/models"
)

const earthRadiusKm = 6371

// Distance returns the great-circle distance in kilometers between two
// points given in decimal degrees. Returns false if either point is missing.
func Distance(lat1, lon1, lat2, lon2 *float64) (float64, bool) {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return 0, false
	}

	rlat1 := *lat1 * math.Pi / 180
	rlon1 := *lon1 * math.Pi / 180
	rlat2 := *lat2 * math.Pi / 180
	rlon2 := *lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))

	return c * earthRadiusKm, true
}

// FilterByProximity keeps tutors with known coordinates within maxDistanceKm
// of the given point. With no point given, the pool passes through unchanged.
func FilterByProximity(tutors []*models.TutorProfile, userLat, userLon *float64, maxDistanceKm float64) []*models.TutorProfile {
	if userLat == nil || userLon == nil {
		return tutors
	}

	nearby := []*models.TutorProfile{}
	for _, tutor := range tutors {
		d, ok := Distance(userLat, userLon, tutor.Latitude, tutor.Longitude)
		if ok && d <= maxDistanceKm {
			nearby = append(nearby, tutor)
		}
	}
	return nearby
}

// QualityScore derives a 0-100 score from a tutor profile snapshot. It is a
// pure recomputation; absent inputs simply contribute nothing.
func QualityScore(tutor *models.TutorProfile) float64 {
	score := 0.0

	// Profile completeness (20 points)
	if len(tutor.Bio) > 50 {
		score += 10
	}
	if len(tutor.Subjects) > 0 {
		score += 5
	}
	if tutor.ProfileComplete {
		score += 5
	}

	// Verification (30 points)
	if tutor.IsVerified {
		score += 10
	}
	score += math.Min(float64(len(tutor.VerificationBadges()))*5, 20)

	// Ratings (30 points)
	if tutor.AverageRating > 0 {
		score += (tutor.AverageRating / 5.0) * 30
	}

	// Reviews count (10 points)
	if tutor.TotalReviews >= 10 {
		score += 10
	} else if tutor.TotalReviews >= 5 {
		score += 5
	}

	// Experience (10 points)
	if tutor.YearsOfExperience >= 5 {
		score += 10
	} else if tutor.YearsOfExperience >= 3 {
		score += 5
	}

	return math.Min(score, 100)
}

// MatchScore rates how well a tutor fits a student's preferences, 0-100.
// Weights: subjects 30, level 20, mode 15, rating 20, verification 10,
// experience 5.
func MatchScore(tutor *models.TutorProfile, student *models.StudentProfile) float64 {
	score := 0.0

	if len(student.PreferredSubjects) > 0 {
		preferred := make(map[string]bool, len(student.PreferredSubjects))
		for _, s := range student.PreferredSubjects {
			preferred[s.ID.String()] = true
		}
		common := 0
		for _, s := range tutor.Subjects {
			if preferred[s.ID.String()] {
				common++
			}
		}
		score += float64(common) / float64(len(student.PreferredSubjects)) * 30
	}

	if student.GradeLevel != "" {
		if tutor.TeachingLevels == models.LevelAll || tutor.TeachingLevels == student.GradeLevel {
			score += 20
		}
	}

	switch student.PreferredMode {
	case models.ModeBoth:
		score += 15
	case models.ModeOnline:
		if tutor.IsAvailableOnline {
			score += 15
		}
	case models.ModeHome:
		if tutor.IsAvailableHome {
			score += 15
		}
	}

	if tutor.AverageRating > 0 {
		score += (tutor.AverageRating / 5.0) * 20
	}

	if tutor.IsVerified {
		score += 10
	}

	if tutor.YearsOfExperience >= 3 {
		score += 5
	}

	return math.Min(score, 100)
}

type ScoredTutor struct {
	Tutor      *models.TutorProfile `json:"tutor"`
	MatchScore float64              `json:"match_score"`
}

// RecommendTutors scores every candidate against the student and returns the
// top limit tutors. Ties break on higher rating, then lowest id, so the
// ordering is deterministic for identical scores.
func RecommendTutors(student *models.StudentProfile, candidates []*models.TutorProfile, limit int) []ScoredTutor {
	scored := make([]ScoredTutor, 0, len(candidates))
	for _, tutor := range candidates {
		scored = append(scored, ScoredTutor{Tutor: tutor, MatchScore: MatchScore(tutor, student)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].MatchScore != scored[j].MatchScore {
			return scored[i].MatchScore > scored[j].MatchScore
		}
		if scored[i].Tutor.AverageRating != scored[j].Tutor.AverageRating {
			return scored[i].Tutor.AverageRating > scored[j].Tutor.AverageRating
		}
		return scored[i].Tutor.ID.String() < scored[j].Tutor.ID.String()
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// visibilityTier maps a tutor's paid placement to a sort rank: premium
// package, then featured, then active boost, then everyone else.
func visibilityTier(t *models.TutorProfile, now time.Time) int {
	switch {
	case t.HasPremiumPackage(now):
		return 0
	case t.IsFeatured || t.HasFeaturedSubscription(now):
		return 1
	case t.IsPremiumBoosted(now):
		return 2
	}
	return 3
}

// SortSearchResults orders search hits: paid visibility tier first, then
// match score (nil when the caller has no student profile), then rating,
// then price ascending, with the id as the final deterministic tie-break.
func SortSearchResults(tutors []ScoredTutor, withMatchScore bool, now time.Time) {
	sort.SliceStable(tutors, func(i, j int) bool {
		ti, tj := visibilityTier(tutors[i].Tutor, now), visibilityTier(tutors[j].Tutor, now)
		if ti != tj {
			return ti < tj
		}
		if withMatchScore && tutors[i].MatchScore != tutors[j].MatchScore {
			return tutors[i].MatchScore > tutors[j].MatchScore
		}
		if tutors[i].Tutor.AverageRating != tutors[j].Tutor.AverageRating {
			return tutors[i].Tutor.AverageRating > tutors[j].Tutor.AverageRating
		}
		pi, pj := math.MaxFloat64, math.MaxFloat64
		if tutors[i].Tutor.HourlyRate != nil {
			pi = *tutors[i].Tutor.HourlyRate
		}
		if tutors[j].Tutor.HourlyRate != nil {
			pj = *tutors[j].Tutor.HourlyRate
		}
		if pi != pj {
			return pi < pj
		}
		return tutors[i].Tutor.ID.String() < tutors[j].Tutor.ID.String()
	})
}
