package i18n

// GetRussianTranslations returns all Russian text strings
func GetRussianTranslations() Translations {
	return Translations{
		FindNearestStations: "Найдите ближайшую заправку",
		Logout:              "Выход",

		LoadingLocation:      "Загрузка местоположения...",
		LocationNotSupported: "Местоположение не поддерживается",
		LocationNotFound:     "Местоположение не найдено",

		BestStation:   "Лучшая заправка",
		HighlyRated:   "Высокий рейтинг",
		SortBy:        "Сортировать по",
		FuelType:      "Тип топлива",
		AllTypes:      "Все типы",
		Nearest:       "Ближайшая",
		LowestPrice:   "Самая дешёвая",
		HighestRating: "Самый высокий рейтинг",
		NoStations:    "Заправки не найдены",
		Currency:      "UZS",
		Price:         "Цена",
		Kilometers:    "км",
		OpenNow:       "Открыто",
		Directions:    "Маршрут",

		AddReview:    "Оставить отзыв",
		YourName:     "Ваше имя",
		EnterName:    "Введите ваше имя",
		Rating:       "Оценка",
		Comment:      "Комментарий",
		Optional:     "необязательно",
		WriteComment: "Напишите ваш отзыв...",
		Cancel:       "Отмена",
		Submit:       "Отправить",
		Submitting:   "Отправка...",
		SelectRating: "Пожалуйста, выберите оценку",
		ReviewAdded:  "Ваш отзыв добавлен",
		ReviewError:  "Не удалось добавить отзыв",
		Reviews:      "отзывов",
		NoReviews:    "Пока нет отзывов. Будьте первым!",
		ViewReviews:  "Посмотреть все отзывы",

		Error:   "Ошибка",
		Success: "Успешно",
		Loading: "Загрузка...",

		InvalidCredentials: "Неверный email или пароль",
		EmailInUse:         "Этот email уже зарегистрирован",
		InvalidEmail:       "Неверный email",
		PasswordTooShort:   "Пароль должен содержать не менее 6 символов",
		PasswordMismatch:   "Пароли не совпадают",
		NameRequired:       "Укажите имя",
		StationNotFound:    "Заправка не найдена",
		NotInView:          "Заправки нет в текущем списке",
		MapUnavailable:     "Карта недоступна",
		InvalidRequest:     "Неверный запрос",
		Unauthorized:       "Сначала войдите в систему",
		InternalError:      "Внутренняя ошибка",
	}
}
