package i18n

// GetUzbekTranslations returns all Uzbek text strings
func GetUzbekTranslations() Translations {
	return Translations{
		FindNearestStations: "Eng yaqin yoqilg'i shoxobchasini toping",
		Logout:              "Chiqish",

		LoadingLocation:      "Lokatsiya yuklanyapti...",
		LocationNotSupported: "Lokatsiya aniqlanmadi",
		LocationNotFound:     "Manzil topilmadi",

		BestStation:   "Eng yaxshi shoxobcha",
		HighlyRated:   "Yuqori bahoga ega",
		SortBy:        "Saralash",
		FuelType:      "Yoqilg'i turi",
		AllTypes:      "Hamma turlar",
		Nearest:       "Eng yaqin",
		LowestPrice:   "Eng arzon",
		HighestRating: "Eng yuqori baho",
		NoStations:    "Shoxobchalar topilmadi",
		Currency:      "so'm",
		Price:         "Narx",
		Kilometers:    "km",
		OpenNow:       "Hozir ochiq",
		Directions:    "Yo'nalish",

		AddReview:    "Baholash",
		YourName:     "Ismingiz",
		EnterName:    "Ismingizni kiriting",
		Rating:       "Baho",
		Comment:      "Sharh",
		Optional:     "ixtiyoriy",
		WriteComment: "Tajribangizni yozing...",
		Cancel:       "Bekor qilish",
		Submit:       "Yuborish",
		Submitting:   "Yuklanmoqda...",
		SelectRating: "Iltimos bahoni tanlang",
		ReviewAdded:  "Sizning sharhingiz qo'shildi",
		ReviewError:  "Sharh qo'shilmadi",
		Reviews:      "sharh",
		NoReviews:    "Hali sharhlar yo'q. Birinchi bo'lib baholang!",
		ViewReviews:  "Barcha sharhlarni ko'rish",

		Error:   "Xatolik",
		Success: "Muvaffaqiyatli",
		Loading: "Yuklanmoqda...",

		InvalidCredentials: "Email yoki parol noto'g'ri",
		EmailInUse:         "Bu email allaqachon ro'yxatdan o'tgan",
		InvalidEmail:       "Email noto'g'ri",
		PasswordTooShort:   "Parol kamida 6 ta belgidan iborat bo'lishi kerak",
		PasswordMismatch:   "Parollar mos kelmadi",
		NameRequired:       "Ism kiritilishi shart",
		StationNotFound:    "Shoxobcha topilmadi",
		NotInView:          "Shoxobcha ro'yxatda yo'q",
		MapUnavailable:     "Xarita mavjud emas",
		InvalidRequest:     "Noto'g'ri so'rov",
		Unauthorized:       "Avval tizimga kiring",
		InternalError:      "Ichki xatolik",
	}
}
