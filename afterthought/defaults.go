package afterthought

import "github.com/teranos/twitgraph/vocab"

// Weight for free-form dates, which people write in too many ways to check.
const birthdayWeight = 0.25

// DefaultMatchers returns a fresh copy of the built-in matcher set, in
// registration order.
func DefaultMatchers() []Matcher {
	return []Matcher{
		MustObjectProperty(vocab.FOAFKnows, `knows`),
		MustObjectProperty(vocab.RelWorksWith, `works with`),
		MustObjectProperty(vocab.RelFriendOf, `is a friend of|friend of`),
		MustObjectProperty(vocab.SIOCFollows, `follows`),

		MustDatatypeProperty(vocab.ContactEmailAddress, `email( address)?`,
			WithValuePattern(`\S+@\S+`)),
		MustDatatypeProperty(vocab.ContactPhone, `phone( number)?`,
			WithValuePattern(`\+?[0-9][0-9 ().-]*[0-9]`)),
		MustDatatypeProperty(vocab.FOAFHomepage, `homepage|web ?site`,
			WithDatatype(vocab.XSDAnyURI), WithValuePattern(`https?://\S+`)),
		MustDatatypeProperty(vocab.FOAFBirthday, `born|birthday`,
			WithWeight(birthdayWeight)),
		MustDatatypeProperty(vocab.FOAFAge, `age`,
			WithDatatype(vocab.XSDInteger), WithValuePattern(`[0-9]{1,3}`)),
	}
}
