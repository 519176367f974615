package record

// SampleDeck returns the demo deck used when no fixture or provider is
// configured.
func SampleDeck() []Record {
	return []Record{
		{
			ID: "demo_1", Name: "Olivia", Age: 25, Zodiac: "Libra", Location: "Taipei", Height: 175,
			Media: []Media{
				{URL: "https://images.examples.com/wp-content/uploads/2017/11/person13.jpg", Kind: MediaPhoto},
				{URL: "https://images.examples.com/wp-content/uploads/2017/11/person14.jpg", Kind: MediaPhoto},
			},
		},
		{
			ID: "demo_2", Name: "Ryan", Age: 28, Zodiac: "Leo", Location: "Hsinchu", Height: 180,
			Media: []Media{
				{URL: "https://images.examples.com/wp-content/uploads/2017/11/person15.jpg", Kind: MediaPhoto},
				{URL: "https://images.examples.com/wp-content/uploads/2017/11/person16.jpg", Kind: MediaPhoto},
			},
		},
		{
			ID: "demo_3", Name: "Maya", Age: 23, Zodiac: "Pisces", Location: "Taichung", Height: 165,
			Media: []Media{
				{URL: "https://images.examples.com/wp-content/uploads/2017/11/person17.jpg", Kind: MediaPhoto},
				{URL: "https://images.examples.com/wp-content/uploads/2017/11/person18.jpg", Kind: MediaPhoto},
			},
		},
		{
			ID: "demo_4", Name: "Ethan", Age: 26, Zodiac: "Aquarius", Location: "Kaohsiung", Height: 178,
			Media: []Media{
				{URL: "https://images.examples.com/wp-content/uploads/2017/11/person19.jpg", Kind: MediaPhoto},
			},
		},
	}
}
