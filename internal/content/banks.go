package content

import "math/rand"

// FoodItem is one emoji riddle for the guessing game.
type FoodItem struct {
	Emoji  string
	Answer string
}

// Question is one trivia prompt with its expected answer.
type Question struct {
	Prompt string
	Answer string
}

var foodBank = []FoodItem{
	{"🍣", "sushi"},
	{"🍜", "ramen"},
	{"🍕", "pizza"},
	{"🌮", "taco"},
	{"🍔", "burger"},
	{"🍩", "donut"},
	{"🥞", "pancakes"},
	{"🍛", "curry"},
	{"🍦", "icecream"},
	{"🍙", "onigiri"},
}

var triviaBank = []Question{
	{"Japan's capital city is?", "tokyo"},
	{"Famous Japanese bullet train is called?", "shinkansen"},
	{"Traditional Japanese warrior class is?", "samurai"},
	{"Japanese currency is the?", "yen"},
	{"Famous mountain often seen in art is Mount?", "fuji"},
	{"The traditional Japanese tea ceremony centers on?", "matcha"},
}

// RandomFood picks a random item from the food bank.
func RandomFood() FoodItem {
	return foodBank[rand.Intn(len(foodBank))]
}

// ShuffledQuestions returns up to n trivia questions in random order.
func ShuffledQuestions(n int) []Question {
	pool := make([]Question, len(triviaBank))
	copy(pool, triviaBank)
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}
