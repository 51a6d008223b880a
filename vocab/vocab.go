// Package vocab holds the IRIs of the vocabularies twitgraph writes.
package vocab

// Base is the namespace all twitgraph-minted resources live under.
const Base = "https://twitgraph.teranos.dev/"

// Path segments under Base, one per minted resource kind.
const (
	PostPath      = Base + "post/twitter/"
	UserPath      = Base + "user/twitter/"
	PersonPath    = Base + "person/twitter/"
	HashtagPath   = Base + "hashtag/"
	DollartagPath = Base + "dollartag/"
	GraphPath     = Base + "graph/twitter/"
	LocationPath  = Base + "location/twitter/"
	PointPath     = Base + "point/"

	// CoreGraph holds structural assertions: posts, accounts, people and
	// places. Extracted knowledge lives in per-post graphs under GraphPath.
	CoreGraph = Base + "graph/core"

	// RetweetOf links a post to the post it republishes
	RetweetOf = Base + "retweetOf"
)

const (
	RDFNS   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFType = RDFNS + "type"

	RDFSNS    = "http://www.w3.org/2000/01/rdf-schema#"
	RDFSLabel = RDFSNS + "label"
)

const (
	XSDNS       = "http://www.w3.org/2001/XMLSchema#"
	XSDString   = XSDNS + "string"
	XSDInteger  = XSDNS + "integer"
	XSDDecimal  = XSDNS + "decimal"
	XSDDateTime = XSDNS + "dateTime"
	XSDAnyURI   = XSDNS + "anyURI"
)

const (
	FOAFNS           = "http://xmlns.com/foaf/0.1/"
	FOAFPerson       = FOAFNS + "Person"
	FOAFKnows        = FOAFNS + "knows"
	FOAFHoldsAccount = FOAFNS + "holdsAccount"
	FOAFHomepage     = FOAFNS + "homepage"
	FOAFBirthday     = FOAFNS + "birthday"
	FOAFAge          = FOAFNS + "age"
)

const (
	SIOCNS              = "http://rdfs.org/sioc/ns#"
	SIOCUserAccount     = SIOCNS + "UserAccount"
	SIOCContent         = SIOCNS + "content"
	SIOCHasCreator      = SIOCNS + "has_creator"
	SIOCReplyOf         = SIOCNS + "reply_of"
	SIOCTopic           = SIOCNS + "topic"
	SIOCLinksTo         = SIOCNS + "links_to"
	SIOCID              = SIOCNS + "id"
	SIOCFollows         = SIOCNS + "follows"
	SIOCEmbedsKnowledge = SIOCNS + "embeds_knowledge"

	SIOCTNS            = "http://rdfs.org/sioc/types#"
	SIOCTMicroblogPost = SIOCTNS + "MicroblogPost"
)

const (
	DCTermsNS      = "http://purl.org/dc/terms/"
	DCTermsCreated = DCTermsNS + "created"
)

const (
	ContactNS           = "http://www.w3.org/2000/10/swap/pim/contact#"
	ContactEmailAddress = ContactNS + "emailAddress"
	ContactPhone        = ContactNS + "phone"
)

const (
	RelNS        = "http://purl.org/vocab/relationship/"
	RelWorksWith = RelNS + "worksWith"
	RelFriendOf  = RelNS + "friendOf"
)

const (
	GeoNS       = "http://www.w3.org/2003/01/geo/wgs84_pos#"
	GeoPoint    = GeoNS + "Point"
	GeoLat      = GeoNS + "lat"
	GeoLong     = GeoNS + "long"
	GeoLocation = GeoNS + "location"

	GeoNamesNS            = "http://www.geonames.org/ontology#"
	GeoNamesFeature       = GeoNamesNS + "Feature"
	GeoNamesParentFeature = GeoNamesNS + "parentFeature"
	GeoNamesName          = GeoNamesNS + "name"
)

// DBpedia classes for place types.
const (
	DBpediaNS                     = "http://dbpedia.org/resource/"
	DBpediaAdministrativeDivision = DBpediaNS + "Administrative_division"
	DBpediaCity                   = DBpediaNS + "City"
	DBpediaCountry                = DBpediaNS + "Country"
	DBpediaNeighborhood           = DBpediaNS + "Neighbourhood" // spelled with 'ou'
	DBpediaPointOfInterest        = DBpediaNS + "Point_of_interest"
)
