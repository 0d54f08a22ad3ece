package normalize

// Fixed word lists backing the normalization rules. These are a curated rule
// set, not general NLP: entries are matched whole-word, case-insensitive, on
// the progressively cleaned string.

// dietModifiers are diet/quality qualifiers that never change which
// ingredient a phrase denotes.
var dietModifiers = []string{
	"low-fat", "low fat", "lowfat",
	"non-fat", "non fat", "nonfat",
	"fat-free", "fat free",
	"reduced-fat", "reduced fat",
	"reduced-sodium", "reduced sodium",
	"low-sodium", "low sodium",
	"sugar-free", "sugar free",
	"gluten-free", "gluten free",
	"unsweetened", "unsalted", "lite", "light", "plain", "skim",
}

// cultivars maps a base ingredient noun to the named varieties that collapse
// onto it. A variety word only collapses when immediately followed by the
// base noun ("fuji apple" -> "apple"; a bare "fuji" is left alone).
var cultivars = map[string][]string{
	"apple": {
		"granny smith", "fuji", "gala", "honeycrisp", "braeburn",
		"mcintosh", "cortland", "pink lady", "red delicious",
		"golden delicious",
	},
	"potato": {"russet", "yukon gold", "fingerling", "red bliss"},
	"onion":  {"vidalia", "spanish", "walla walla"},
	"tomato": {"roma", "heirloom", "beefsteak", "san marzano"},
}

// mannerAdverbs qualify a preparation verb and carry no signal of their own.
// They are only stripped when immediately followed by one of prepVerbs.
var mannerAdverbs = []string{
	"finely", "thinly", "coarsely", "roughly", "freshly", "thickly", "lightly",
}

var prepVerbs = []string{
	"chopped", "diced", "sliced", "minced", "grated", "shredded",
	"crushed", "beaten", "packed", "whipped", "toasted", "squeezed",
}

// stateWords cover preparation state, freshness, and readiness
var stateWords = []string{
	"chopped", "diced", "sliced", "minced", "grated", "shredded",
	"peeled", "drained", "rinsed", "melted", "softened", "beaten",
	"cooked", "uncooked", "crushed", "cubed", "trimmed", "seeded",
	"cored", "mashed", "crumbled", "toasted", "thawed", "squeezed",
	"packed", "whipped", "sifted",
	"fresh", "frozen", "canned", "dried", "raw", "ripe", "jarred", "bottled",
	"instant", "quick-cooking", "precooked", "prepared",
	"ready-to-eat", "ready to eat", "leftover",
}

// containerNouns are quantity/container words, optionally followed by "of"
var containerNouns = []string{
	"bunches", "bunch", "cloves", "clove", "cans", "can",
	"packages", "package", "pkgs", "pkg", "jars", "jar",
	"bottles", "bottle", "bags", "bag", "boxes", "box",
	"containers", "container", "heads", "head", "stalks", "stalk",
	"sprigs", "sprig", "pieces", "piece", "sticks", "stick",
	"ears", "ear", "loaves", "loaf", "pinches", "pinch",
	"dashes", "dash", "handfuls", "handful",
}

// descriptors are post-processing descriptors and qualifier phrases
var descriptors = []string{
	"halved", "quartered", "pitted", "hulled", "stemmed", "deveined",
	"shelled", "husked", "pounded", "divided", "optional",
	"to taste", "as needed", "if desired", "for garnish", "for serving",
	"plus more", "at room temperature", "room temperature",
}

// unitWords are units of measure
var unitWords = []string{
	"cups", "cup", "tablespoons", "tablespoon", "tbsp", "tbs",
	"teaspoons", "teaspoon", "tsp", "ounces", "ounce", "oz",
	"pounds", "pound", "lbs", "lb", "grams", "gram", "kilograms",
	"kilogram", "kg", "milliliters", "milliliter", "ml", "liters",
	"liter", "litres", "litre", "quarts", "quart", "qt", "pints",
	"pint", "gallons", "gallon", "fluid ounces", "fluid ounce", "fl oz",
	"inches", "inch", "cm",
}
