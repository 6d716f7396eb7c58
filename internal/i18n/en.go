package i18n

// GetEnglishTranslations returns all English text strings
func GetEnglishTranslations() Translations {
	return Translations{
		FindNearestStations: "Find nearest gas stations",
		Logout:              "Logout",

		LoadingLocation:      "Loading location...",
		LocationNotSupported: "Location not supported",
		LocationNotFound:     "Location not found",

		BestStation:   "Best Station",
		HighlyRated:   "Highly rated",
		SortBy:        "Sort by",
		FuelType:      "Fuel type",
		AllTypes:      "All types",
		Nearest:       "Nearest",
		LowestPrice:   "Lowest price",
		HighestRating: "Highest rating",
		NoStations:    "No stations found",
		Currency:      "UZS",
		Price:         "Price",
		Kilometers:    "km",
		OpenNow:       "Open now",
		Directions:    "Directions",

		AddReview:    "Add Review",
		YourName:     "Your Name",
		EnterName:    "Enter your name",
		Rating:       "Rating",
		Comment:      "Comment",
		Optional:     "optional",
		WriteComment: "Write your experience...",
		Cancel:       "Cancel",
		Submit:       "Submit",
		Submitting:   "Submitting...",
		SelectRating: "Please select a rating",
		ReviewAdded:  "Your review has been added",
		ReviewError:  "Failed to add review",
		Reviews:      "reviews",
		NoReviews:    "No reviews yet. Be the first to review!",
		ViewReviews:  "View all reviews",

		Error:   "Error",
		Success: "Success",
		Loading: "Loading...",

		InvalidCredentials: "Invalid email or password",
		EmailInUse:         "This email is already registered",
		InvalidEmail:       "Invalid email",
		PasswordTooShort:   "Password must be at least 6 characters",
		PasswordMismatch:   "Passwords do not match",
		NameRequired:       "Name is required",
		StationNotFound:    "Station not found",
		NotInView:          "Station is not in the current list",
		MapUnavailable:     "Map is unavailable",
		InvalidRequest:     "Invalid request",
		Unauthorized:       "Please log in first",
		InternalError:      "Internal error",
	}
}
