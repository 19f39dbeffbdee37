package catalog

import "doctor-booking-api/internal/model"

var (
	weekdayMornings   = []string{"09:00", "09:30", "10:00", "10:30", "11:00"}
	weekdayAfternoons = []string{"14:00", "14:30", "15:00", "15:30", "16:00"}
)

// Default returns the built-in doctor dataset used when no other source is configured.
func Default() []model.Doctor {
	return []model.Doctor{
		{
			ID:             "1",
			Name:           "Dr. Sarah Johnson",
			Specialization: "Cardiologist",
			ProfileImage:   "https://images.pexels.com/photos/5215024/pexels-photo-5215024.jpeg",
			Rating:         4.9,
			Experience:     15,
			Location:       "Downtown Medical Center",
			About:          "Board-certified cardiologist focused on preventive care, heart failure and arrhythmia management.",
			Availability: map[string][]string{
				"Monday":    weekdayMornings,
				"Wednesday": weekdayMornings,
				"Friday":    {"09:00", "10:00", "11:00"},
			},
			IsAvailable: true,
		},
		{
			ID:             "2",
			Name:           "Dr. Michael Chen",
			Specialization: "Dermatologist",
			ProfileImage:   "https://images.pexels.com/photos/6749778/pexels-photo-6749778.jpeg",
			Rating:         4.8,
			Experience:     12,
			Location:       "Skin Care Clinic",
			About:          "Treats acne, eczema and psoriasis and performs skin cancer screenings.",
			Availability: map[string][]string{
				"Tuesday":  weekdayAfternoons,
				"Thursday": weekdayAfternoons,
				"Saturday": {"10:00", "11:00"},
			},
			IsAvailable: true,
		},
		{
			ID:             "3",
			Name:           "Dr. Emily Rodriguez",
			Specialization: "Pediatrician",
			ProfileImage:   "https://images.pexels.com/photos/5327585/pexels-photo-5327585.jpeg",
			Rating:         4.9,
			Experience:     10,
			Location:       "Children's Health Center",
			About:          "Cares for children from newborns to adolescents, with a focus on developmental health and vaccinations.",
			Availability: map[string][]string{
				"Monday":   weekdayAfternoons,
				"Tuesday":  weekdayMornings,
				"Thursday": weekdayMornings,
			},
			IsAvailable: false,
		},
		{
			ID:             "4",
			Name:           "Dr. James Wilson",
			Specialization: "Orthopedic Surgeon",
			ProfileImage:   "https://images.pexels.com/photos/5452201/pexels-photo-5452201.jpeg",
			Rating:         4.7,
			Experience:     20,
			Location:       "Sports Medicine Institute",
			About:          "Sports injuries, joint replacement and minimally invasive arthroscopic surgery.",
			Availability: map[string][]string{
				"Wednesday": weekdayAfternoons,
				"Friday":    weekdayAfternoons,
			},
			IsAvailable: true,
		},
		{
			ID:             "5",
			Name:           "Dr. Priya Patel",
			Specialization: "Neurologist",
			ProfileImage:   "https://images.pexels.com/photos/5407206/pexels-photo-5407206.jpeg",
			Rating:         4.6,
			Experience:     8,
			Location:       "Neuroscience Clinic",
			About:          "Diagnoses and treats migraines, epilepsy and sleep disorders.",
			Availability: map[string][]string{
				"Monday":   {"13:00", "14:00", "15:00"},
				"Thursday": {"13:00", "14:00", "15:00"},
			},
			IsAvailable: false,
		},
		{
			ID:             "6",
			Name:           "Dr. Robert Taylor",
			Specialization: "General Practitioner",
			ProfileImage:   "https://images.pexels.com/photos/4173251/pexels-photo-4173251.jpeg",
			Rating:         4.5,
			Experience:     18,
			Location:       "Family Health Practice",
			About:          "Primary care for adults, annual checkups and chronic disease management.",
			Availability: map[string][]string{
				"Monday":    weekdayMornings,
				"Tuesday":   weekdayMornings,
				"Wednesday": weekdayMornings,
				"Thursday":  weekdayMornings,
				"Friday":    weekdayMornings,
			},
			IsAvailable: true,
		},
	}
}
