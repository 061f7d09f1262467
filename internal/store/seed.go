package store

import (
	"context"
	"math/rand/v2"
	"time"

	"roster/internal/models"
)

var (
	seedFirstNames = []string{"Алексей", "Иван", "Дмитрий", "Сергей", "Андрей", "Максим", "Артём", "Никита", "Павел", "Егор"}
	seedLastNames  = []string{"Иванов", "Смирнов", "Кузнецов", "Попов", "Васильев", "Петров", "Соколов", "Михайлов", "Новиков", "Фёдоров"}
	seedPatronyms  = []string{"Алексеевич", "Иванович", "Дмитриевич", "Сергеевич", "Андреевич", "Олегович"}
	seedTeams      = []string{"Динамо", "Спартак", "Зенит", "Рубин", "ЦСКА", "Локомотив", "Урал", "Ростов", "Ахмат", "Оренбург"}
	seedCities     = []string{"Минск", "Брест", "Новолукомль", "Москва", "Санкт-Петербург", "Казань", "Самара",
		"Ростов-на-Дону", "Краснодар", "Уфа", "Челябинск", "Волгоград", "Нижний Новгород"}

	seedBirthFrom = time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC)
	seedBirthTo   = time.Date(2007, time.December, 31, 0, 0, 0, 0, time.UTC)
)

func pick[T any](rng *rand.Rand, xs []T) T { return xs[rng.IntN(len(xs))] }

// FakePlayers generates n plausible players for demos and load tests.
func FakePlayers(n int, rng *rand.Rand) []models.Player {
	days := int(seedBirthTo.Sub(seedBirthFrom).Hours() / 24)
	out := make([]models.Player, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Player{
			FullName:     pick(rng, seedLastNames) + " " + pick(rng, seedFirstNames) + " " + pick(rng, seedPatronyms),
			BirthDate:    models.DateOf(seedBirthFrom.AddDate(0, 0, rng.IntN(days+1))),
			FootballTeam: pick(rng, seedTeams),
			HomeCity:     pick(rng, seedCities),
			TeamType:     pick(rng, models.AllTeamTypes()),
			Position:     pick(rng, models.AllPositions()),
		})
	}
	return out
}

// Seed adds n generated players to b and reports how many were written.
func Seed(ctx context.Context, b Backend, n int, rng *rand.Rand) (int, error) {
	for i, p := range FakePlayers(n, rng) {
		if err := b.Add(ctx, &p); err != nil {
			return i, err
		}
	}
	return n, nil
}

// SeedIfEmpty seeds only when b holds no players yet.
func SeedIfEmpty(ctx context.Context, b Backend, n int, rng *rand.Rand) (int, error) {
	existing, err := b.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	return Seed(ctx, b, n, rng)
}
