package registry

var committees = []Entry{
	{ID: "academics", Title: "Academics Committee", Description: "Runs study sessions, tutorials and academic events for members.", ImageRef: "/images/committees/academics.png"},
	{ID: "creatives", Title: "Creatives Committee", Description: "Designs publication materials, merchandise and event visuals.", ImageRef: "/images/committees/creatives.png"},
	{ID: "external-relations", Title: "External Relations Committee", Description: "Builds partnerships with sponsors, alumni and other organizations.", ImageRef: "/images/committees/external-relations.png"},
	{ID: "finance", Title: "Finance Committee", Description: "Handles budgeting, collections and financial reports.", ImageRef: "/images/committees/finance.png"},
	{ID: "human-resources", Title: "Human Resources Committee", Description: "Looks after member welfare, engagement and internal activities.", ImageRef: "/images/committees/human-resources.png"},
	{ID: "logistics", Title: "Logistics Committee", Description: "Secures venues, equipment and on-the-ground event operations.", ImageRef: "/images/committees/logistics.png"},
	{ID: "marketing", Title: "Marketing Committee", Description: "Plans campaigns and manages the organization's social media presence.", ImageRef: "/images/committees/marketing.png"},
	{ID: "membership", Title: "Membership Committee", Description: "Manages recruitment drives and the member roster.", ImageRef: "/images/committees/membership.png"},
	{ID: "publications", Title: "Publications Committee", Description: "Writes and edits articles, newsletters and announcements.", ImageRef: "/images/committees/publications.png"},
	{ID: "technology", Title: "Technology Committee", Description: "Builds and maintains the organization's web platforms and tools.", ImageRef: "/images/committees/technology.png"},
}

var roles = []Entry{
	{ID: "president", Title: "President", Description: "Leads the Executive Board and represents the organization.", ImageRef: "/images/eb/president.png"},
	{ID: "internal-vice-president", Title: "Internal Vice President", Description: "Oversees internal operations and all committees.", ImageRef: "/images/eb/internal-vice-president.png"},
	{ID: "external-vice-president", Title: "External Vice President", Description: "Oversees partnerships, marketing and publications.", ImageRef: "/images/eb/external-vice-president.png"},
	{ID: "secretary-general", Title: "Secretary General", Description: "Keeps records, minutes and membership documentation.", ImageRef: "/images/eb/secretary-general.png"},
	{ID: "treasurer", Title: "Treasurer", Description: "Manages the organization's funds.", ImageRef: "/images/eb/treasurer.png"},
	{ID: "auditor", Title: "Auditor", Description: "Audits financial records and transactions.", ImageRef: "/images/eb/auditor.png"},
	{ID: "director-academics", Title: "Director for Academics", Description: "Heads the Academics Committee.", ImageRef: "/images/eb/director-academics.png"},
	{ID: "director-creatives", Title: "Director for Creatives", Description: "Heads the Creatives Committee.", ImageRef: "/images/eb/director-creatives.png"},
	{ID: "director-external-relations", Title: "Director for External Relations", Description: "Heads the External Relations Committee.", ImageRef: "/images/eb/director-external-relations.png"},
	{ID: "director-finance", Title: "Director for Finance", Description: "Heads the Finance Committee.", ImageRef: "/images/eb/director-finance.png"},
	{ID: "director-human-resources", Title: "Director for Human Resources", Description: "Heads the Human Resources Committee.", ImageRef: "/images/eb/director-human-resources.png"},
	{ID: "director-logistics", Title: "Director for Logistics", Description: "Heads the Logistics Committee.", ImageRef: "/images/eb/director-logistics.png"},
	{ID: "director-marketing", Title: "Director for Marketing", Description: "Heads the Marketing Committee.", ImageRef: "/images/eb/director-marketing.png"},
	{ID: "director-membership", Title: "Director for Membership", Description: "Heads the Membership Committee.", ImageRef: "/images/eb/director-membership.png"},
	{ID: "director-publications", Title: "Director for Publications", Description: "Heads the Publications Committee.", ImageRef: "/images/eb/director-publications.png"},
	{ID: "director-technology", Title: "Director for Technology", Description: "Heads the Technology Committee.", ImageRef: "/images/eb/director-technology.png"},
}

var roleEmails = map[string]string{
	"president":                   "president@org.example",
	"internal-vice-president":     "ivp@org.example",
	"external-vice-president":     "evp@org.example",
	"secretary-general":           "secgen@org.example",
	"treasurer":                   "treasurer@org.example",
	"auditor":                     "auditor@org.example",
	"director-academics":          "academics@org.example",
	"director-creatives":          "creatives@org.example",
	"director-external-relations": "externals@org.example",
	"director-finance":            "finance@org.example",
	"director-human-resources":    "hr@org.example",
	"director-logistics":          "logistics@org.example",
	"director-marketing":          "marketing@org.example",
	"director-membership":         "membership@org.example",
	"director-publications":       "publications@org.example",
	"director-technology":         "technology@org.example",
}

// fullPurviewRoles review every committee and EA application
var fullPurviewRoles = map[string]bool{
	"president":               true,
	"internal-vice-president": true,
}

// committeePurview maps an EB role to the committees whose applications it reviews
var committeePurview = map[string][]string{
	"external-vice-president":     {"external-relations", "marketing", "publications"},
	"secretary-general":           {"human-resources", "membership"},
	"treasurer":                   {"finance"},
	"auditor":                     {"finance"},
	"director-academics":          {"academics"},
	"director-creatives":          {"creatives"},
	"director-external-relations": {"external-relations"},
	"director-finance":            {"finance"},
	"director-human-resources":    {"human-resources"},
	"director-logistics":          {"logistics"},
	"director-marketing":          {"marketing"},
	"director-membership":         {"membership"},
	"director-publications":       {"publications"},
	"director-technology":         {"technology"},
}
