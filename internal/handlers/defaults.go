package handlers

import "github.com/nutqapp/nutq-backend/internal/types"

// defaultLetters is the built-in Arabic alphabet with classical articulation
// points and the four short-vowel forms for each letter.
var defaultLetters = []types.LetterItem{
	{Letter: "ب", ArticulationPoint: "الشفتان", Vowels: []string{"بَ", "بِ", "بُ", "بْ"}},
	{Letter: "ت", ArticulationPoint: "طرف اللسان مع أصول الثنايا العليا", Vowels: []string{"تَ", "تِ", "تُ", "تْ"}},
	{Letter: "ث", ArticulationPoint: "طرف اللسان مع أطراف الثنايا العليا", Vowels: []string{"ثَ", "ثِ", "ثُ", "ثْ"}},
	{Letter: "ج", ArticulationPoint: "وسط اللسان مع الحنك الصلب", Vowels: []string{"جَ", "جِ", "جُ", "جْ"}},
	{Letter: "ح", ArticulationPoint: "وسط الحلق", Vowels: []string{"حَ", "حِ", "حُ", "حْ"}},
	{Letter: "خ", ArticulationPoint: "أدنى الحلق", Vowels: []string{"خَ", "خِ", "خُ", "خْ"}},
	{Letter: "د", ArticulationPoint: "طرف اللسان مع أصول الثنايا العليا", Vowels: []string{"دَ", "دِ", "دُ", "دْ"}},
	{Letter: "ذ", ArticulationPoint: "طرف اللسان مع أطراف الثنايا العليا", Vowels: []string{"ذَ", "ذِ", "ذُ", "ذْ"}},
	{Letter: "ر", ArticulationPoint: "طرف اللسان مع اللثة العليا", Vowels: []string{"رَ", "رِ", "رُ", "رْ"}},
	{Letter: "ز", ArticulationPoint: "طرف اللسان مع اللثة العليا", Vowels: []string{"زَ", "زِ", "زُ", "زْ"}},
	{Letter: "س", ArticulationPoint: "طرف اللسان مع اللثة العليا", Vowels: []string{"سَ", "سِ", "سُ", "سْ"}},
	{Letter: "ش", ArticulationPoint: "وسط اللسان مع الحنك الصلب", Vowels: []string{"شَ", "شِ", "شُ", "شْ"}},
	{Letter: "ص", ArticulationPoint: "طرف اللسان مع اللثة العليا", Vowels: []string{"صَ", "صِ", "صُ", "صْ"}},
	{Letter: "ض", ArticulationPoint: "حافة اللسان مع الأضراس العليا", Vowels: []string{"ضَ", "ضِ", "ضُ", "ضْ"}},
	{Letter: "ط", ArticulationPoint: "طرف اللسان مع أصول الثنايا العليا", Vowels: []string{"طَ", "طِ", "طُ", "طْ"}},
	{Letter: "ظ", ArticulationPoint: "طرف اللسان مع أطراف الثنايا العليا", Vowels: []string{"ظَ", "ظِ", "ظُ", "ظْ"}},
	{Letter: "ع", ArticulationPoint: "وسط الحلق", Vowels: []string{"عَ", "عِ", "عُ", "عْ"}},
	{Letter: "غ", ArticulationPoint: "أدنى الحلق", Vowels: []string{"غَ", "غِ", "غُ", "غْ"}},
	{Letter: "ف", ArticulationPoint: "الشفة السفلى مع الثنايا العليا", Vowels: []string{"فَ", "فِ", "فُ", "فْ"}},
	{Letter: "ق", ArticulationPoint: "أقصى اللسان مع الحنك الرخو", Vowels: []string{"قَ", "قِ", "قُ", "قْ"}},
	{Letter: "ك", ArticulationPoint: "أقصى اللسان مع الحنك الرخو", Vowels: []string{"كَ", "كِ", "كُ", "كْ"}},
	{Letter: "ل", ArticulationPoint: "حافة اللسان مع اللثة العليا", Vowels: []string{"لَ", "لِ", "لُ", "لْ"}},
	{Letter: "م", ArticulationPoint: "الشفتان", Vowels: []string{"مَ", "مِ", "مُ", "مْ"}},
	{Letter: "ن", ArticulationPoint: "طرف اللسان مع اللثة العليا", Vowels: []string{"نَ", "نِ", "نُ", "نْ"}},
	{Letter: "ه", ArticulationPoint: "أقصى الحلق", Vowels: []string{"هَ", "هِ", "هُ", "هْ"}},
	{Letter: "و", ArticulationPoint: "الشفتان", Vowels: []string{"وَ", "وِ", "وُ", "وْ"}},
	{Letter: "ي", ArticulationPoint: "وسط اللسان مع الحنك الصلب", Vowels: []string{"يَ", "يِ", "يُ", "يْ"}},
}

// defaultWords is the built-in Libyan dialect vocabulary grouped by category.
var defaultWords = []types.WordItem{
	{Word: "فرحان", Translation: "Happy", Category: "emotions"},
	{Word: "حزين", Translation: "Sad", Category: "emotions"},
	{Word: "خايف", Translation: "Scared", Category: "emotions"},
	{Word: "زعلان", Translation: "Upset", Category: "emotions"},

	{Word: "جعان", Translation: "Hungry", Category: "needs"},
	{Word: "عطشان", Translation: "Thirsty", Category: "needs"},
	{Word: "نعسان", Translation: "Sleepy", Category: "needs"},
	{Word: "تعبان", Translation: "Tired", Category: "needs"},

	{Word: "ماشي", Translation: "Walking", Category: "actions"},
	{Word: "راكض", Translation: "Running", Category: "actions"},
	{Word: "قاعد", Translation: "Sitting", Category: "actions"},
	{Word: "واقف", Translation: "Standing", Category: "actions"},

	{Word: "بابا", Translation: "Dad", Category: "family"},
	{Word: "ماما", Translation: "Mom", Category: "family"},
	{Word: "خويا", Translation: "Brother", Category: "family"},
	{Word: "ختي", Translation: "Sister", Category: "family"},
}
