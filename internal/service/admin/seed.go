package admin

import "github.com/kirinyoku/barberbook/internal/domain"

func cents(v int64) *int64 { return &v }

var demoServices = []domain.Service{
	{Name: "Corte Degradê", PriceCents: 4500, DurationMin: 45, Description: "Corte moderno com acabamento em navalha, inclui lavagem e finalização com pomada.", Category: domain.CategoryHair},
	{Name: "Barba Terapia", PriceCents: 3500, DurationMin: 30, Description: "Ritual completo de barba com toalha quente, massagem facial e hidratação.", Category: domain.CategoryBeard},
	{Name: "Combo Viking", PriceCents: 7000, DurationMin: 75, Description: "O pacote completo: Corte de cabelo + Barba Terapia. Saia pronto para a batalha.", Category: domain.CategoryCombo, DiscountCents: cents(1000)},
	{Name: "Sobrancelha", PriceCents: 1500, DurationMin: 15, Description: "Design e limpeza de sobrancelha com navalha ou pinça.", Category: domain.CategoryOther},
	{Name: "Pigmentação", PriceCents: 3000, DurationMin: 25, Description: "Pintura para disfarçar falhas na barba ou cabelo, efeito natural.", Category: domain.CategoryBeard},
	{Name: "Serviço Premium", PriceCents: 10000, DurationMin: 90, Description: "Corte, barba e massagem facial completa.", Category: domain.CategoryCombo},
	{Name: "Pezinho (Acabamento)", PriceCents: 2000, DurationMin: 20, Description: "Apenas o acabamento nas laterais e nuca para manter o corte em dia.", Category: domain.CategoryHair},
}

var demoBarbers = []domain.Barber{
	{Name: `Carlos "Navalha"`, Avatar: "https://picsum.photos/id/1005/100/100"},
	{Name: "André Silva", Avatar: "https://picsum.photos/id/1012/100/100"},
	{Name: "Marcos Santos", Avatar: "https://picsum.photos/id/1025/100/100"},
	{Name: "Pedro Alves", Avatar: "https://picsum.photos/id/1006/100/100"},
}

func pick(idx ...int) []domain.Barber {
	out := make([]domain.Barber, 0, len(idx))
	for _, i := range idx {
		out = append(out, demoBarbers[i])
	}
	return out
}

// DemoShops is the catalog loaded by cmd/seed.
func DemoShops() []domain.Shop {
	return []domain.Shop{
		{
			Name:                  "Barbearia Viking",
			Address:               "Rua das Flores, 123 - Centro",
			Rating:                4.8,
			ReviewsCount:          "120 avaliações",
			Image:                 "https://lh3.googleusercontent.com/aida-public/AB6AXuAfiIkrCDHGGl2ye5DAlPRpOIXdqoXIIvaMnmzX3s39r6Iwb29VmTiQPTIcBYXnE4rnT29BAzwWCVE7K2wbQICDu0gdMuq3L2IQtQbBprGAKSLPzRRe42E89RHgwh7xJ4Z4ufOZ6LHBkbm9Z26yioAFxwI1mqULqaqJyFiMbCFInxwyoGbynXuLVyJXoRZZw-NtLZzEOy0hWvcmgXT_Bh8eFUb05FMh2cTQRiC7JCsukyONFjkKb9vGIfrme2sZQFBXjZzLqN6naQE",
			Logo:                  "https://lh3.googleusercontent.com/aida-public/AB6AXuAvWDmTsHef8Qf-Wj6SzM7MmNQUnpfgXopluASc0wTy_zAmlr3CB8kpsyZezcbzLllSExjc46VLr_GJo2PjxcmyJmtngtPtCctf_mOSMXpYuCOI6wmK7u__1kcZdSAPX4Q95c2de7jUFfWjFyj6iMU-q7XkjhboJ0TmfcsSmJZzYzxr5BP4e5nz9M-Y8CEK7g-0HaScelu08mUaT3qNR_JFWbyZaN8ApKT9WzQW5a_cK8vL2ssKlX2HXpDOTqXdX7RUbjbuBS23Ezo",
			Status:                domain.ShopOpen,
			OpeningHours:          "09:00 - 20:00",
			Phone:                 "(11) 99999-8888",
			Tags:                  []string{"Corte", "Barba", "Sobrancelha"},
			MainServicePriceCents: 4500,
			MainServiceName:       "Corte Degradê",
			Services:              demoServices,
			Barbers:               pick(0, 1, 2),
		},
		{
			Name:                  "Estilo & Navalha",
			Address:               "Vila Madalena, SP",
			Rating:                4.7,
			ReviewsCount:          "85 avaliações",
			Image:                 "https://lh3.googleusercontent.com/aida-public/AB6AXuBhj36tLftWNiOc-0h286B3O3rqg9nockMCbLdBgCcm67PmoxEv4npQuLuNhfKvX-C-gjOpjD73ece3nWpo8FiNkBdkPwMXVXP0eJ_da9wfwMyzzfPFpIxfBdyz6hejWtucLqCeoHlBwFNct8iYmSPOwFMqaPWRuPo9Uv8-sM1O8gBbRAtGUgI-OTQFEUUGCrMLsuvb6uLD0sqlx5J9eEJrJahVG1Guu7xNNPNASnsEj3LsWevhgpj-7yKCGvg74sQpUqZsCHomN5M",
			Logo:                  "https://lh3.googleusercontent.com/aida-public/AB6AXuAkz0FeDNVkUm2oxlZf0j33y1SrAnzaKX6emYSwTBES9NBlsKDIL74GasUcotCeNJ4yCguJNKqGV4jY8ec8zGDeaKwYuaD1BFtYZTBE00DtwVnRt9aHd1TQJ9-g4rt4mm3aeSB1Qz2bHD1x-KR80zsNDd-Mn8Zvm9lD5EFWmM47qEONTSxwEFdZ6r78pEo6LSBmApQ_Nh5UYNUPwmqQBALx4Es-cp6M23e8RccwKu6FYEul1d_4FYQ6JZ5DTAI21-lx0TyshsfRZqQ",
			Status:                domain.ShopClosed,
			OpeningHours:          "10:00 - 22:00",
			Phone:                 "(11) 98888-7777",
			Tags:                  []string{"Corte", "Barboterapia"},
			MainServicePriceCents: 6000,
			MainServiceName:       "Corte + Barba",
			Services:              demoServices,
			Barbers:               pick(1, 2),
		},
		{
			Name:                  "Gentleman's Club",
			Address:               "Jardins, São Paulo",
			Rating:                5.0,
			ReviewsCount:          "210 avaliações",
			Image:                 "https://lh3.googleusercontent.com/aida-public/AB6AXuBZH9IAPQEeC6I3MRD1w5dzyiuy9naIuzEfvq0xJDmeHE65iqyV6S_Tf8eHQTeDZd5IKyWAf_aaL9MfeE7Vd4qT07awsP_hsCPf_vwOi6V89fQlseijU1qJB3Q2uWl0al6WidgCtYI0LeVuB7jd0C9ZktaJtAgFCDWovILKql-I0x27deyGjM0a4OjlimIko8Api5LWs32KdXuu3Q3u5lyJjLx3Xf8Zn9wsBWN_hH0FrijdWeN5FddYwYRQUPrkT7mfY0YGA9dxHWk",
			Logo:                  "https://lh3.googleusercontent.com/aida-public/AB6AXuCz6bgosPGpBjnA4nOgbWjPxU4-fEx9BH6kP5qzikloINfLeMLB510TljmVoo_20bUJOeAeqqqDcMYhYkwIH_AJaGthOhlLNRYsXI7J_N0tbwpAMbHJTzLlbmodPVnW8aUoUwNZ-wAv_1CVjvE4dIwet1gybIH7mZkl5JY8Ta6AJv7H-xTYtRfLl4RrTkLZNGRIjqZjCPQVjPGkS48RsJUOZHGv1tJIp3kwxqmWgUB-tjr61ogcjFpTw7EhC4diWEHDNHF4GLMMiR0",
			Status:                domain.ShopOpen,
			OpeningHours:          "08:00 - 19:00",
			Phone:                 "(11) 97777-6666",
			Tags:                  []string{"Completo", "Massagem"},
			MainServicePriceCents: 8000,
			MainServiceName:       "Serviço Premium",
			Services:              demoServices,
			Barbers:               pick(0, 2, 3),
		},
	}
}
